package invoker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultInterpreter = "python3"
	DefaultScript      = "main.py"
	// NoInterpreter runs the script as the executable itself.
	NoInterpreter = "none"
)

// Resolve builds the command from the directory of the running executable.
func Resolve(interpreter, script string) (Command, error) {
	execPath, err := os.Executable()
	if err != nil {
		return Command{}, fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = resolved
	}
	return ResolveFrom(filepath.Dir(execPath), interpreter, script), nil
}

// ResolveFrom builds argv as [interpreter, installDir/script]. Absolute script
// paths are used as-is. An empty or "none" interpreter runs the script directly.
func ResolveFrom(installDir, interpreter, script string) Command {
	script = strings.TrimSpace(script)
	if script == "" {
		script = DefaultScript
	}
	if !filepath.IsAbs(script) {
		script = filepath.Join(installDir, script)
	}

	interpreter = strings.TrimSpace(interpreter)
	if interpreter == "" || strings.EqualFold(interpreter, NoInterpreter) {
		return Command{Path: script}
	}
	return Command{Path: interpreter, Args: []string{script}}
}
