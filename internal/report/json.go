package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/roach88/viewcheck/internal/harness"
)

// Response is the JSON envelope shared by every viewcheck command.
type Response struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *Error      `json:"error,omitempty"` // error details
}

// Error is the error structure inside a Response.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrCodeFailed marks a report with failing cases.
const ErrCodeFailed = "E_CHECK_FAILED"

// JSONFormatter writes the report inside a Response envelope.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(w io.Writer, r *harness.Report) error {
	resp := Response{Status: "ok", Data: r}
	if !r.Pass() {
		resp.Status = "error"
		resp.Error = &Error{
			Code:    ErrCodeFailed,
			Message: fmt.Sprintf("%d case(s) failed", r.Failed),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(resp)
}
