package factlog

import "github.com/vilterp/factlog/pkg/store"

// Request is what a client sends: one line of input.
type Request struct {
	LineID int    `json:"line_id"`
	Line   string `json:"line"`
	// Reset discards a partially sent statement; Line is ignored.
	Reset bool `json:"reset,omitempty"`
	// Flush marks end of input; an unterminated statement is an error.
	Flush bool `json:"flush,omitempty"`
}

// Response answers exactly one Request.
type Response struct {
	LineID  int              `json:"line_id"`
	Results []*ResultMessage `json:"results,omitempty"`
	Error   *string          `json:"error,omitempty"`
	// Pending means the line ended mid-statement.
	Pending bool `json:"pending,omitempty"`
	// Output of a backslash command.
	Text *string `json:"text,omitempty"`
}

type ResultMessage struct {
	Kind      string            `json:"kind"`
	Statement string            `json:"statement"`
	Match     *store.StoredFact `json:"match,omitempty"`
	Message   string            `json:"message"`
}

func newResultMessage(r *Result) *ResultMessage {
	return &ResultMessage{
		Kind:      r.Kind.String(),
		Statement: r.Statement.String(),
		Match:     r.Match,
		Message:   r.String(),
	}
}

func newResponse(lineID int, results []*Result, err error, pending bool) *Response {
	resp := &Response{
		LineID:  lineID,
		Pending: pending,
	}
	for _, result := range results {
		resp.Results = append(resp.Results, newResultMessage(result))
	}
	if err != nil {
		msg := err.Error()
		resp.Error = &msg
	}
	return resp
}
