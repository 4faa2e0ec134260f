package wallet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const DefaultSessionFileName = ".itiza-session.json"

// Session persists the last-connected mock wallet address between runs,
// read on startup and cleared on disconnect.
type Session struct {
	filePath string
}

type sessionFile struct {
	Address string `json:"address"`
}

// NewSession creates a session store at the given path, defaulting to
// the home directory
func NewSession(filePath string) (*Session, error) {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(home, DefaultSessionFileName)
	}

	return &Session{filePath: filePath}, nil
}

// Load returns the saved address, or an empty string if no session exists
func (s *Session) Load() (string, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return f.Address, nil
}

// Save stores the address as the current session
func (s *Session) Save(address string) error {
	data, err := json.MarshalIndent(sessionFile{Address: address}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to temporary file first, then rename for atomic write
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}

	if err := os.Rename(tempFile, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Clear removes the saved session
func (s *Session) Clear() error {
	err := os.Remove(s.filePath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// GetFilePath returns the session file path
func (s *Session) GetFilePath() string {
	return s.filePath
}
