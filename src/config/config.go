package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"enhance-with-ai/src/invoker"
)

const (
	ConfigPathEnvVar     = "ENHANCE_WITH_AI"
	InterpreterEnvVar    = "HELPER_INTERPRETER"
	ScriptEnvVar         = "HELPER_SCRIPT"
	TimeoutEnvVar        = "INVOKE_TIMEOUT_SEC"
	ClipboardEnvVar      = "CLIPBOARD_BACKEND"
	DefaultInterpreter   = invoker.DefaultInterpreter
	DefaultScript        = invoker.DefaultScript
	DefaultClipboard     = "auto"
	DefaultWorkers       = 1
	defaultTimeoutSecond = 0
)

// LoadOptions carries command-line overrides; they win over every other source.
type LoadOptions struct {
	InterpreterOverride string
	ScriptOverride      string
	TimeoutOverride     time.Duration
	ClipboardOverride   string
}

type Config struct {
	Interpreter       string
	Script            string
	InvokeTimeout     time.Duration
	ClipboardBackend  string
	EnableFileLogging bool
	Workers           int
	EnvPath           string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use ENHANCE_WITH_AI env var as a path to a config file
	// godotenv.Load never overrides variables already present in the environment.
	envPath := resolveEnvPath()
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		Interpreter:       resolveInterpreter(opts),
		Script:            firstNonEmpty(opts.ScriptOverride, os.Getenv(ScriptEnvVar), DefaultScript),
		InvokeTimeout:     resolveTimeout(opts),
		ClipboardBackend:  resolveClipboard(opts),
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		Workers:           getEnvInt("WORKERS", DefaultWorkers),
		EnvPath:           envPath,
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(ConfigPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

// resolveInterpreter keeps an explicitly empty HELPER_INTERPRETER distinct from
// an unset one, so a .env can opt into running the script directly.
func resolveInterpreter(opts LoadOptions) string {
	if override := strings.TrimSpace(opts.InterpreterOverride); override != "" {
		return override
	}
	if value, ok := os.LookupEnv(InterpreterEnvVar); ok {
		return strings.TrimSpace(value)
	}
	return DefaultInterpreter
}

func resolveTimeout(opts LoadOptions) time.Duration {
	if opts.TimeoutOverride > 0 {
		return opts.TimeoutOverride
	}
	return time.Duration(getEnvInt(TimeoutEnvVar, defaultTimeoutSecond)) * time.Second
}

func resolveClipboard(opts LoadOptions) string {
	value := firstNonEmpty(opts.ClipboardOverride, os.Getenv(ClipboardEnvVar), DefaultClipboard)
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "native":
		return "native"
	case "command", "cmd":
		return "command"
	case "memory":
		return "memory"
	default:
		return DefaultClipboard
	}
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return defaultValue
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
