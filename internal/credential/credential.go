// Package credential holds an API key for the span of exactly one generation request.
package credential

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kayz/veoscene/internal/scene"
)

// ErrSpent is returned when a Secret is used a second time or after Release.
var ErrSpent = errors.New("credential already used")

// Secret is a single-use reference to an API key. It is never persisted or logged.
type Secret struct {
	mu     sync.Mutex
	key    []byte
	used   bool
	masked string
}

// New copies key into a Secret.
func New(key string) *Secret {
	key = strings.TrimSpace(key)
	return &Secret{key: []byte(key), masked: mask(key)}
}

// Use hands the key to fn. It succeeds once; later calls return ErrSpent without calling fn.
// fn receives an immutable string copy. Release cannot zero that copy or any the HTTP client makes from it.
func (s *Secret) Use(fn func(key string) error) error {
	s.mu.Lock()
	if s.used || s.key == nil {
		s.mu.Unlock()
		return ErrSpent
	}
	s.used = true
	key := string(s.key)
	s.mu.Unlock()

	return fn(key)
}

// Release zeroes the key bytes held by s. It is safe to call more than once.
func (s *Secret) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.key {
		s.key[i] = 0
	}
	s.key = nil
	s.used = true
}

// Released reports whether the key bytes are gone.
func (s *Secret) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key == nil
}

// Empty reports whether the key is blank.
func (s *Secret) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.key) == 0
}

// CheckPrefix validates the key format without consuming the Secret.
func (s *Secret) CheckPrefix(label, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key == nil {
		return scene.Configurationf("API key is required")
	}
	return validate(s.key, label, prefix)
}

// Masked is a log-safe rendering of the key.
func (s *Secret) Masked() string {
	return s.masked
}

func (s *Secret) String() string {
	return s.masked
}

func (s *Secret) GoString() string {
	return fmt.Sprintf("credential.Secret(%s)", s.masked)
}

// ValidateFormat checks key against the service's key prefix. An empty prefix only requires a non-blank key.
func ValidateFormat(key, label, prefix string) error {
	return validate([]byte(strings.TrimSpace(key)), label, prefix)
}

func validate(key []byte, label, prefix string) error {
	if len(key) == 0 {
		return scene.Configurationf("API key is required")
	}
	if prefix != "" && !strings.HasPrefix(string(key), prefix) {
		return scene.Configurationf("Invalid API key format. %s keys begin with %q", label, prefix)
	}
	return nil
}

func mask(key string) string {
	if key == "" {
		return "<empty>"
	}
	if len(key) <= 12 {
		return "****"
	}
	head := 3
	if i := strings.LastIndex(key[:min(len(key)-4, 8)], "-"); i >= 0 {
		head = i + 1
	}
	return key[:head] + "…" + key[len(key)-4:]
}
