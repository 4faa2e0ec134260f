package gift

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const DefaultStoreFileName = ".itiza-gifts.json"

// FileStore is a Store backed by a JSON file, so gift codes survive
// between CLI runs
type FileStore struct {
	filePath string
	mu       sync.RWMutex
	gifts    map[string]*Gift
}

// giftFile is the JSON structure on disk
type giftFile struct {
	Gifts map[string]*Gift `json:"gifts"`
}

// NewFileStore creates a file-backed store, defaulting to the home
// directory when no path is given
func NewFileStore(filePath string) (*FileStore, error) {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(home, DefaultStoreFileName)
	}

	store := &FileStore{
		filePath: filePath,
		gifts:    make(map[string]*Gift),
	}

	// Load existing gifts if the file exists
	if err := store.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load gifts: %w", err)
		}
	}

	return store, nil
}

// load reads gifts from the storage file
func (s *FileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var f giftFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to unmarshal gifts: %w", err)
	}

	s.gifts = f.Gifts
	if s.gifts == nil {
		s.gifts = make(map[string]*Gift)
	}

	return nil
}

// save writes gifts to the storage file
func (s *FileStore) save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := json.MarshalIndent(giftFile{Gifts: s.gifts}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal gifts: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to temporary file first, then rename for atomic write
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write gifts: %w", err)
	}

	if err := os.Rename(tempFile, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Create adds a new gift record
func (s *FileStore) Create(g *Gift) error {
	s.mu.Lock()
	if _, exists := s.gifts[g.Code]; exists {
		s.mu.Unlock()
		return fmt.Errorf("gift code '%s' already exists", g.Code)
	}

	s.gifts[g.Code] = g
	s.mu.Unlock()

	return s.save()
}

// Get retrieves a gift by code
func (s *FileStore) Get(code string) (*Gift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, exists := s.gifts[code]
	if !exists {
		return nil, fmt.Errorf("gift code '%s' not found", code)
	}

	return g, nil
}

// Update modifies an existing gift record
func (s *FileStore) Update(g *Gift) error {
	s.mu.Lock()
	if _, exists := s.gifts[g.Code]; !exists {
		s.mu.Unlock()
		return fmt.Errorf("gift code '%s' not found", g.Code)
	}

	s.gifts[g.Code] = g
	s.mu.Unlock()

	return s.save()
}

// ListPending returns all unclaimed gifts
func (s *FileStore) ListPending() []*Gift {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gifts := make([]*Gift, 0)
	for _, g := range s.gifts {
		if g.IsPending() {
			gifts = append(gifts, g)
		}
	}

	return gifts
}

// Exists checks whether a code is taken
func (s *FileStore) Exists(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.gifts[code]
	return exists
}

// GetFilePath returns the storage file path
func (s *FileStore) GetFilePath() string {
	return s.filePath
}

var _ Store = (*FileStore)(nil)
