package invoker

import (
	"errors"
	"testing"
)

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{name: "Both", req: Request{Instruction: "summarize", Text: "long text"}},
		{name: "InstructionOnly", req: Request{Instruction: "tell a joke"}},
		{name: "TextOnly", req: Request{Text: "translate me"}},
		{name: "Empty", req: Request{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrMissingInput) {
				t.Errorf("Expected ErrMissingInput, got %v", err)
			}
		})
	}
}

func TestRequestPayloadKeys(t *testing.T) {
	data, err := Request{Instruction: "a \"quoted\" word", Text: "ünïcode\n"}.Payload()
	if err != nil {
		t.Fatalf("Payload failed: %v", err)
	}
	want := `{"instruction":"a \"quoted\" word","text":"ünïcode\n"}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}
}

func TestRequestPayloadKeepsEmptyFields(t *testing.T) {
	data, err := Request{Text: "only text"}.Payload()
	if err != nil {
		t.Fatalf("Payload failed: %v", err)
	}
	if string(data) != `{"instruction":"","text":"only text"}` {
		t.Errorf("Unexpected payload %s", data)
	}
}
