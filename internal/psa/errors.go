package psa

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RemoteError is a non-success answer from the PSA.
type RemoteError struct {
	Call       string
	StatusCode int
	Code       string
	Message    string
	Details    []string
	Body       string
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Body
	}
	return fmt.Sprintf("psa %s: status %d: %s", e.Call, e.StatusCode, msg)
}

// PartialCreationError reports a company that was created although its contact was not.
// No compensating delete is issued; CompanyID names the orphaned record.
type PartialCreationError struct {
	CompanyID string
	Err       error
}

func (e *PartialCreationError) Error() string {
	return fmt.Sprintf("company %s created but contact creation failed: %v", e.CompanyID, e.Err)
}

func (e *PartialCreationError) Unwrap() error {
	return e.Err
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Errors  []struct {
		Code     string `json:"code"`
		Message  string `json:"message"`
		Resource string `json:"resource"`
		Field    string `json:"field"`
	} `json:"errors"`
}

func newRemoteError(call string, status int, body []byte) *RemoteError {
	raw := strings.TrimSpace(string(body))
	if len(raw) > maxErrorBody {
		raw = raw[:maxErrorBody]
	}
	remote := &RemoteError{Call: call, StatusCode: status, Body: raw}

	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return remote
	}
	remote.Code = payload.Code
	remote.Message = payload.Message
	for _, sub := range payload.Errors {
		detail := sub.Message
		if sub.Field != "" {
			detail = sub.Field + ": " + detail
		}
		remote.Details = append(remote.Details, detail)
	}
	return remote
}
