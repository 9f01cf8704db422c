package factlog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	clog "github.com/vilterp/factlog/pkg/log"
)

// connection gives one websocket client its own session. Requests are
// handled one at a time on the goroutine that reads them, so the session is
// never touched concurrently.
type connection struct {
	clientConn *websocket.Conn
	id         uuid.UUID
	session    *Session
	context    context.Context
}

func newConnection(ctx context.Context, wsConn *websocket.Conn, session *Session, id uuid.UUID) *connection {
	return &connection{
		clientConn: wsConn,
		id:         id,
		session:    session,
		context:    ctx,
	}
}

func (conn *connection) Ctx() context.Context {
	return conn.context
}

func (conn *connection) handleRequests() {
	clog.Println(conn, "initiated from", conn.clientConn.RemoteAddr())
	defer conn.close()
	for {
		req := &Request{}
		if err := conn.clientConn.ReadJSON(req); err != nil {
			clog.Println(conn, "terminated:", err)
			return
		}
		resp := conn.handleRequest(req)
		if err := conn.clientConn.WriteJSON(resp); err != nil {
			clog.Errorf(conn, "error writing to socket: %v", err)
			return
		}
	}
}

func (conn *connection) handleRequest(req *Request) *Response {
	if req.Reset {
		conn.session.Reset()
		return &Response{LineID: req.LineID}
	}
	if req.Flush {
		results, err := conn.session.Flush()
		return newResponse(req.LineID, results, err, false)
	}
	if strings.HasPrefix(strings.TrimSpace(req.Line), `\`) {
		resp := &Response{LineID: req.LineID}
		if out, ok := conn.session.Command(req.Line); ok {
			resp.Text = &out
		} else {
			msg := "unknown command: " + strings.TrimSpace(req.Line)
			resp.Error = &msg
		}
		return resp
	}
	results, err := conn.session.Exec(req.Line)
	if err != nil {
		clog.Printf(conn, "line %d: %v", req.LineID, err)
	}
	return newResponse(req.LineID, results, err, conn.session.Pending())
}

func (conn *connection) close() {
	if err := conn.session.Close(); err != nil {
		clog.Errorf(conn, "error closing session: %v", err)
	}
	conn.clientConn.Close()
}
