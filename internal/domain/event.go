package domain

import (
	"time"

	"github.com/google/uuid"
)

// ToolInvocation is the audit record emitted each time an agent tool runs.
type ToolInvocation struct {
	ID         string         `json:"id"`
	Tool       string         `json:"tool"`
	Convention string         `json:"convention"`
	Params     map[string]any `json:"params,omitempty"`
	OK         bool           `json:"ok"`
	ErrorKind  ErrorKind      `json:"error_kind,omitempty"`
	Error      string         `json:"error,omitempty"`
	DurationMS int64          `json:"duration_ms"`
	InvokedAt  time.Time      `json:"invoked_at"`
}

// NewToolInvocation stamps a fresh ID and the current clock time.
// Params named "api_key" are redacted.
func NewToolInvocation(tool, convention string, params map[string]any) ToolInvocation {
	return ToolInvocation{
		ID:         uuid.NewString(),
		Tool:       tool,
		Convention: convention,
		Params:     redactParams(params),
		InvokedAt:  clock.Now().UTC(),
	}
}

// Complete records the outcome and returns the elapsed time since InvokedAt.
func (t *ToolInvocation) Complete(result GeocodeResult, invokeErr error) time.Duration {
	elapsed := clock.Since(t.InvokedAt)
	t.DurationMS = elapsed.Milliseconds()
	switch {
	case invokeErr != nil:
		t.ErrorKind = ErrInvalidRequest
		t.Error = invokeErr.Error()
	case !result.OK:
		t.ErrorKind = result.Kind
		t.Error = result.Error
	default:
		t.OK = true
	}
	return elapsed
}

func redactParams(params map[string]any) map[string]any {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		if k == "api_key" {
			out[k] = "REDACTED"
			continue
		}
		out[k] = v
	}
	return out
}
