package invoker

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingInput is returned when a request carries neither an instruction nor text.
var ErrMissingInput = errors.New("missing instruction or content")

// Request is the payload written to the external command's stdin.
type Request struct {
	Instruction string `json:"instruction"`
	Text        string `json:"text"`
}

// Validate reports ErrMissingInput when both fields are empty.
// Callers check this before invoking; Invoke itself does not refuse.
func (r Request) Validate() error {
	if r.Instruction == "" && r.Text == "" {
		return ErrMissingInput
	}
	return nil
}

// Payload serializes the request as a single JSON object.
func (r Request) Payload() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return data, nil
}
