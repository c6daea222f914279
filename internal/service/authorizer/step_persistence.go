package authorizer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

// SaveEnvStep merges the collected credentials into the env file, keeping
// every other entry already there.
type SaveEnvStep struct {
	err   error
	saved bool
}

func NewSaveEnvStep() Step {
	return &SaveEnvStep{}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return next
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *AuthState, width, height int) (Step, tea.Cmd) {
	if s.saved {
		return nil, nil
	}
	if s.err != nil {
		return s, nil
	}

	if err := SaveEnv(state.EnvPath, state.EnvVars); err != nil {
		s.err = err
		return s, nil
	}

	s.saved = true
	return nil, nil
}

func (s *SaveEnvStep) View(state *AuthState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.saved {
		return "Configuration saved successfully!\n"
	}
	return "Saving configuration...\n"
}

// SaveEnv writes vars into the env file at path, overriding existing keys
// and creating the file (and its directory) when missing.
func SaveEnv(path string, vars map[string]string) error {
	merged := make(map[string]string)

	existing, err := godotenv.Read(path)
	switch {
	case err == nil:
		merged = existing
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	for k, v := range vars {
		merged[k] = v
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create env directory: %w", err)
		}
	}

	if err := godotenv.Write(merged, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	// the file holds client secrets
	return os.Chmod(path, 0o600)
}
