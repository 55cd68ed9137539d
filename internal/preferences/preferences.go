package preferences

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
)

// DarkModeKey is the fixed key the dark-mode flag is stored under.
const DarkModeKey = "darkMode"

// Store is a small JSON key-value file holding user preferences.
// Values are strings, as in browser local storage.
type Store struct {
	File   string
	mu     sync.RWMutex
	values map[string]string
}

func New(file string) *Store {
	return &Store{File: file, values: map[string]string{}}
}

func (s *Store) String() string {
	return fmt.Sprintf("file '%s'", s.File)
}

// Load reads the file. A missing file leaves every preference at its default.
func (s *Store) Load() error {
	values := map[string]string{}
	data, err := os.ReadFile(s.File)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return fmt.Errorf("read preferences: %w", err)
	case len(bytes.TrimSpace(data)) > 0:
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("decode preferences: %w", err)
		}
	}
	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return nil
}

// DarkMode reports the stored flag; anything but "true" reads as false.
func (s *Store) DarkMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[DarkModeKey] == "true"
}

// SetDarkMode stores the flag and persists the file.
func (s *Store) SetDarkMode(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setDarkModeLocked(on)
}

// ToggleDarkMode flips the flag, persists it and returns the new value.
// Read, flip and write happen under one lock so concurrent toggles never
// collapse into one.
func (s *Store) ToggleDarkMode() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	on := s.values[DarkModeKey] != "true"
	if err := s.setDarkModeLocked(on); err != nil {
		return !on, err
	}
	return on, nil
}

// setDarkModeLocked rolls the value back when the file cannot be written.
func (s *Store) setDarkModeLocked(on bool) error {
	prev, had := s.values[DarkModeKey]
	s.values[DarkModeKey] = fmt.Sprintf("%t", on)
	if err := s.storeLocked(); err != nil {
		if had {
			s.values[DarkModeKey] = prev
		} else {
			delete(s.values, DarkModeKey)
		}
		return err
	}
	return nil
}

func (s *Store) storeLocked() error {
	// Create the path to the file if it doesn't exist.
	dir := filepath.Dir(s.File)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}

	buf := bytes.NewBuffer(nil)
	enc := json.NewEncoder(buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.values); err != nil {
		return err
	}
	return atomic.WriteFile(s.File, buf)
}
