package apiclient

import (
	"encoding/json"
	"os"
	"sync"
)

// TokenStore holds the current access/refresh pair. Implementations must be
// safe for concurrent use; the client reads on every request.
type TokenStore interface {
	Tokens() (access, refresh string)
	Set(access, refresh string)
	Clear()
}

type MemoryTokenStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Tokens() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access, s.refresh
}

func (s *MemoryTokenStore) Set(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
}

func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
}

type persistedTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// FileTokenStore mirrors the pair to a JSON file so a restarted process can
// resume its session.
type FileTokenStore struct {
	mu      sync.RWMutex
	path    string
	access  string
	refresh string
}

// NewFileTokenStore loads any previously persisted pair. A missing or
// unreadable file just starts the store empty.
func NewFileTokenStore(path string) *FileTokenStore {
	s := &FileTokenStore{path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var t persistedTokens
	if err := json.Unmarshal(raw, &t); err != nil {
		return s
	}
	s.access = t.AccessToken
	s.refresh = t.RefreshToken
	return s
}

func (s *FileTokenStore) Tokens() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access, s.refresh
}

func (s *FileTokenStore) Set(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
	s.persistLocked()
}

func (s *FileTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	_ = os.Remove(s.path)
}

func (s *FileTokenStore) persistLocked() {
	raw, err := json.Marshal(persistedTokens{
		AccessToken:  s.access,
		RefreshToken: s.refresh,
	})
	if err != nil {
		return
	}
	// Best effort: an unwritable mirror degrades to in-memory behavior.
	_ = os.WriteFile(s.path, raw, 0600)
}
