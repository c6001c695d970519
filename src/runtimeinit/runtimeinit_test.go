package runtimeinit

import (
	"path/filepath"
	"testing"
	"time"

	"enhance-with-ai/src/config"
)

func TestBootstrapBuildsInvoker(t *testing.T) {
	script := filepath.Join(t.TempDir(), "helper.py")
	loggingCalled := false

	rt, err := Bootstrap(Options{
		LoadOptions: config.LoadOptions{
			InterpreterOverride: "python3",
			ScriptOverride:      script,
			TimeoutOverride:     15 * time.Second,
		},
		SetupLogging: func(bool) { loggingCalled = true },
	})
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	if !loggingCalled {
		t.Error("Expected SetupLogging to be called")
	}
	if rt.Invoker.Command.Path != "python3" {
		t.Errorf("Expected interpreter python3, got %q", rt.Invoker.Command.Path)
	}
	if len(rt.Invoker.Command.Args) != 1 || rt.Invoker.Command.Args[0] != script {
		t.Errorf("Expected script arg %q, got %v", script, rt.Invoker.Command.Args)
	}
	if rt.Invoker.Timeout != 15*time.Second {
		t.Errorf("Expected 15s timeout, got %v", rt.Invoker.Timeout)
	}
	if rt.Invoker.OnTransition == nil {
		t.Error("Expected transitions to be logged")
	}
	if rt.Clipboard != nil {
		t.Error("Expected no clipboard when not requested")
	}
}
