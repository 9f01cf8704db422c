package factlog

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// Client talks to a Server. Each Exec waits for its response, so one
// client runs one line at a time.
type Client struct {
	URL string

	mu         sync.Mutex
	conn       *websocket.Conn
	nextLineID int
}

func NewClient(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", url)
	}
	return &Client{
		URL:  url,
		conn: conn,
	}, nil
}

// Exec sends one line. Failures of the line itself come back in
// Response.Error; the returned error is for transport problems.
func (c *Client) Exec(line string) (*Response, error) {
	return c.send(&Request{Line: line})
}

// Reset drops whatever part of a statement the server is holding.
func (c *Client) Reset() error {
	_, err := c.send(&Request{Reset: true})
	return err
}

// Flush tells the server input is over.
func (c *Client) Flush() (*Response, error) {
	return c.send(&Request{Flush: true})
}

func (c *Client) send(req *Request) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req.LineID = c.nextLineID
	c.nextLineID++
	if err := c.conn.WriteJSON(req); err != nil {
		return nil, errors.Wrap(err, "sending line")
	}
	resp := &Response{}
	if err := c.conn.ReadJSON(resp); err != nil {
		return nil, errors.Wrap(err, "reading response")
	}
	if resp.LineID != req.LineID {
		return nil, errors.Errorf("response for line %d; expected %d", resp.LineID, req.LineID)
	}
	return resp, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
