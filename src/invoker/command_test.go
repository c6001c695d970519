package invoker

import (
	"path/filepath"
	"testing"
)

func TestResolveFrom(t *testing.T) {
	installDir := filepath.Join("opt", "enhance-with-ai")
	absScript := filepath.Join(t.TempDir(), "custom.py")

	tests := []struct {
		name        string
		interpreter string
		script      string
		wantPath    string
		wantArgs    []string
	}{
		{
			name:        "OriginalRule",
			interpreter: DefaultInterpreter,
			script:      DefaultScript,
			wantPath:    "python3",
			wantArgs:    []string{filepath.Join(installDir, "main.py")},
		},
		{
			name:        "EmptyScriptFallsBackToDefault",
			interpreter: "python3",
			script:      "  ",
			wantPath:    "python3",
			wantArgs:    []string{filepath.Join(installDir, "main.py")},
		},
		{
			name:        "AbsoluteScriptKept",
			interpreter: "/usr/bin/python3",
			script:      absScript,
			wantPath:    "/usr/bin/python3",
			wantArgs:    []string{absScript},
		},
		{
			name:        "NoInterpreterRunsScriptDirectly",
			interpreter: "none",
			script:      "enhance-ai",
			wantPath:    filepath.Join(installDir, "enhance-ai"),
		},
		{
			name:        "EmptyInterpreterRunsScriptDirectly",
			interpreter: "",
			script:      "enhance-ai",
			wantPath:    filepath.Join(installDir, "enhance-ai"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := ResolveFrom(installDir, tt.interpreter, tt.script)
			if cmd.Path != tt.wantPath {
				t.Errorf("Expected Path=%q, got %q", tt.wantPath, cmd.Path)
			}
			if len(cmd.Args) != len(tt.wantArgs) {
				t.Fatalf("Expected args %v, got %v", tt.wantArgs, cmd.Args)
			}
			for i := range cmd.Args {
				if cmd.Args[i] != tt.wantArgs[i] {
					t.Errorf("Expected arg[%d]=%q, got %q", i, tt.wantArgs[i], cmd.Args[i])
				}
			}
		})
	}
}

func TestResolveUsesExecutableDir(t *testing.T) {
	cmd, err := Resolve("none", "main.py")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !filepath.IsAbs(cmd.Path) {
		t.Errorf("Expected absolute script path, got %q", cmd.Path)
	}
	if filepath.Base(cmd.Path) != "main.py" {
		t.Errorf("Expected main.py, got %q", cmd.Path)
	}
}
