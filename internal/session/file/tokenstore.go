// Package sessionfile stores the token pair of each profile in a YAML credentials file.
package sessionfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/ipsfa/inventario-client/internal/session"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

type credentialsFile struct {
	Profiles map[string]session.Tokens `yaml:"profiles"`
}

// TokenStore reads and writes one profile of the credentials file.
// Other profiles in the same file are preserved.
type TokenStore struct {
	mu      sync.Mutex
	path    string
	profile string
}

var _ = session.TokenStore(&TokenStore{})

// NewTokenStore expands environment variables such as $HOME in path.
func NewTokenStore(path, profile string) *TokenStore {
	return &TokenStore{
		path:    os.ExpandEnv(path),
		profile: profile,
	}
}

func (s *TokenStore) Path() string {
	return s.path
}

func (s *TokenStore) Load(_ context.Context) (session.Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return session.Tokens{}, err
	}

	return f.Profiles[s.profile], nil
}

func (s *TokenStore) Save(_ context.Context, tokens session.Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return err
	}
	f.Profiles[s.profile] = tokens

	return s.write(f)
}

func (s *TokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := f.Profiles[s.profile]; !ok {
		return nil
	}
	delete(f.Profiles, s.profile)

	if len(f.Profiles) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing credentials file: %w", err)
		}

		return nil
	}

	return s.write(f)
}

func (s *TokenStore) read() (credentialsFile, error) {
	f := credentialsFile{Profiles: map[string]session.Tokens{}}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return f, fmt.Errorf("reading credentials file: %w", err)
	}

	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("decoding credentials file %s: %w", s.path, err)
	}
	if f.Profiles == nil {
		f.Profiles = map[string]session.Tokens{}
	}

	return f, nil
}

// write replaces the file atomically through a temporary file in the same directory.
func (s *TokenStore) write(f credentialsFile) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding credentials file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("creating temporary credentials file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("setting credentials file mode: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing credentials file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing credentials file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing credentials file: %w", err)
	}

	return nil
}
