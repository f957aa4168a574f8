// Package preferences is the client's key-value preference file.
package preferences

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/amanotes/internal/filex"
	"github.com/spf13/viper"
)

const (
	KeyMode      = "mode"
	KeyLastEmail = "last_email"
)

// Store persists preferences as JSON. Every Set is written through.
type Store struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// Open loads path if it exists. A missing file is not an error; it is
// created on the first Set.
func Open(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read preferences %s: %w", path, err)
		}
	}
	return &Store{v: v, path: path}, nil
}

func (s *Store) GetString(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetString(key)
}

func (s *Store) IsSet(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.IsSet(key)
}

func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.Set(key, value)
	if _, err := filex.EnsureDir(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}

func (s *Store) Path() string { return s.path }
