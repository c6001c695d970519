package enhancer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"enhance-with-ai/src/llm"
)

const (
	configDirName     = "enhance-with-ai"
	configFileName    = "config"
	placeholderPrefix = "sk-xxxxxxxx"
)

// ErrConfigCreated is returned on first run after the template was written.
var ErrConfigCreated = errors.New("configuration file not found")

type Settings struct {
	APIKey  string
	Model   string
	BaseURL string
	Path    string
}

// DefaultConfigPath returns ~/.config/enhance-with-ai/config.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", configDirName, configFileName), nil
}

func configTemplate() string {
	return "# Enhance With AI – configuration file\n" +
		"# Add your OpenAI API key below\n\n" +
		"OPENAI_API_KEY=sk-xxxxxxxxxxxxxxxxxxxxxxxxxxxx\n\n" +
		"# Optional model configuration\n" +
		"MODEL=" + llm.DefaultModel + "\n\n" +
		"# Optional OpenAI-compatible endpoint\n" +
		"# BASE_URL=" + llm.DefaultBaseURL + "\n"
}

// LoadSettings reads KEY=VALUE settings from path. A missing file is created
// from a template and reported as ErrConfigCreated so the user can fill it in.
func LoadSettings(path string) (*Settings, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(configTemplate()), 0o600); err != nil {
			return nil, fmt.Errorf("failed to create config file: %w", err)
		}
		return nil, fmt.Errorf("%w.\n\nA new one has been created at:\n  %s\n\nPlease edit it, add your OpenAI API key, and try again", ErrConfigCreated, path)
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	s := &Settings{
		APIKey:  strings.TrimSpace(values["OPENAI_API_KEY"]),
		Model:   strings.TrimSpace(values["MODEL"]),
		BaseURL: strings.TrimSpace(values["BASE_URL"]),
		Path:    path,
	}
	if s.Model == "" {
		s.Model = llm.DefaultModel
	}
	if s.APIKey == "" || strings.HasPrefix(s.APIKey, placeholderPrefix) {
		return nil, fmt.Errorf("no valid OPENAI_API_KEY found in %s\nPlease set:\nOPENAI_API_KEY=sk-...", path)
	}
	return s, nil
}
