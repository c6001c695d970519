package enhancer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"enhance-with-ai/src/invoker"
	"enhance-with-ai/src/logutil"
)

// FallbackPrompt is sent when stdin does not hold a valid payload.
const FallbackPrompt = "Tell me the joke of the day"

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// BuildPrompt joins instruction and text with a blank line. Anything other
// than a JSON object gets the fallback prompt.
func BuildPrompt(raw []byte) string {
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		log.Printf("Enhancer: payload is not a JSON object, using fallback prompt")
		return FallbackPrompt
	}
	var req invoker.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		log.Printf("Enhancer: payload is not valid JSON (%v), using fallback prompt", err)
		return FallbackPrompt
	}
	return strings.TrimSpace(req.Instruction + "\n\n" + req.Text)
}

// Run reads one payload from in, asks c, and writes the answer to out.
func Run(ctx context.Context, in io.Reader, out io.Writer, c Completer) error {
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	prompt := BuildPrompt(raw)
	log.Printf("Enhancer: prompt (%d chars): %q", len(prompt), logutil.SanitizeForLog(prompt))

	answer, err := c.Complete(ctx, prompt)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, answer)
	return err
}
