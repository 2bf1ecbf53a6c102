// Package dotenv stores the LLM API key in a private dotenv file.
//
// The file lives at ~/.sermonindex/credentials.env with 0600 permissions
// and holds a single ANTHROPIC_API_KEY entry. When the ANTHROPIC_API_KEY
// environment variable is set it takes precedence and the store becomes
// read-only for that process.
package dotenv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CredentialStore = (*Store)(nil)

const (
	// CredentialsFile is the dotenv file name inside the config directory.
	CredentialsFile = "credentials.env"

	// KeyVar is the variable holding the API key, in the file and in the
	// environment.
	KeyVar = "ANTHROPIC_API_KEY"
)

// Store is a file-backed CredentialStore.
type Store struct {
	mu        sync.Mutex
	path      string
	available bool
	lookupEnv func(string) (string, bool)
}

// NewStore creates a store in dir. An empty dir uses ~/.sermonindex.
// A directory that cannot be created makes the store unavailable rather
// than failing: the rest of the application works without a key.
func NewStore(dir string) *Store {
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".sermonindex")
		}
	}

	s := &Store{
		path:      filepath.Join(dir, CredentialsFile),
		lookupEnv: os.LookupEnv,
	}
	if dir != "" {
		s.available = os.MkdirAll(dir, 0700) == nil
	}
	return s
}

// Path returns the credentials file path.
func (s *Store) Path() string {
	return s.path
}

// Available reports whether the credentials directory is usable.
func (s *Store) Available() bool {
	return s.available
}

// Get returns the API key, preferring the environment.
func (s *Store) Get() (string, error) {
	if v, ok := s.fromEnv(); ok {
		return v, nil
	}
	if !s.available {
		return "", domain.ErrCredentialStoreUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	key := strings.TrimSpace(values[KeyVar])
	if key == "" {
		return "", domain.ErrCredentialsMissing
	}
	return key, nil
}

// Set stores the API key.
func (s *Store) Set(secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return fmt.Errorf("%w: empty API key", domain.ErrInvalidInput)
	}
	if !s.available {
		return domain.ErrCredentialStoreUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[KeyVar] = secret
	return s.write(values)
}

// Delete removes the API key from the file. The environment is untouched.
func (s *Store) Delete() error {
	if !s.available {
		return domain.ErrCredentialStoreUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := values[KeyVar]; !ok {
		return nil
	}
	delete(values, KeyVar)
	if len(values) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove credentials file: %w", err)
		}
		return nil
	}
	return s.write(values)
}

// Has reports whether an API key is available.
func (s *Store) Has() bool {
	_, err := s.Get()
	return err == nil
}

func (s *Store) fromEnv() (string, bool) {
	v, ok := s.lookupEnv(KeyVar)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// read loads the file; a missing file is empty. Caller holds mu.
func (s *Store) read() (map[string]string, error) {
	values, err := godotenv.Read(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrCredentialStoreUnavailable, s.path, err)
	}
	return values, nil
}

// write persists values with owner-only permissions. Caller holds mu.
func (s *Store) write(values map[string]string) error {
	content, err := godotenv.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(content+"\n"), 0600); err != nil {
		return fmt.Errorf("%w: write %s: %v", domain.ErrCredentialStoreUnavailable, s.path, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(s.path, 0600); err != nil {
		return fmt.Errorf("%w: chmod %s: %v", domain.ErrCredentialStoreUnavailable, s.path, err)
	}
	return nil
}
