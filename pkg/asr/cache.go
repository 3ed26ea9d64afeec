package asr

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/tmm22/VoiceInk-sub003/pkg/tokenizer"
)

// VocabFileName is the vocabulary file expected inside every model
// directory.
const VocabFileName = "tokens.txt"

// CachedModel bundles a session with the metadata that is only valid
// together with it: the declared output names and the tokenizer built from
// the same model directory. Invalidation always discards the set as a whole.
type CachedModel struct {
	Session     Session
	OutputNames []string
	Tokenizer   *tokenizer.Tokenizer
	ModelPath   string
}

// SessionCache lazily creates and caches one CachedModel per model key.
//
// The lock guards only the map. Session construction (slow disk and engine
// work) happens outside it, so two concurrent first-use calls for the same
// key may both construct a session; whichever finishes last wins the cache
// slot. That is acceptable because sessions are read-only views of identical
// model bytes — but callers must not assume the handle they got back stays
// the cached one after such a race. The displaced session is not closed
// here; an in-flight call may still hold it, and it is released when its
// last reference goes away.
type SessionCache struct {
	factory SessionFactory

	mu      sync.Mutex
	entries map[string]*CachedModel
}

// NewSessionCache creates an empty cache backed by the given factory.
func NewSessionCache(factory SessionFactory) *SessionCache {
	return &SessionCache{
		factory: factory,
		entries: make(map[string]*CachedModel),
	}
}

// Get returns the cached model for m.Key, constructing it on first use.
// Failed constructions are never cached and surface as ErrModelLoadFailed.
func (c *SessionCache) Get(m Model) (*CachedModel, error) {
	c.mu.Lock()
	e, ok := c.entries[m.Key]
	c.mu.Unlock()
	if ok {
		return e, nil
	}

	path, err := m.Family.ModelFile(m.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoadFailed, err)
	}

	session, err := c.factory.NewSession(path)
	if err != nil {
		return nil, fmt.Errorf("%w: create session for %s: %v", ErrModelLoadFailed, m.Key, err)
	}

	tok, err := tokenizer.LoadFile(filepath.Join(m.Dir, VocabFileName))
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("%w: %v", ErrModelLoadFailed, err)
	}

	e = &CachedModel{
		Session:     session,
		OutputNames: session.OutputNames(),
		Tokenizer:   tok,
		ModelPath:   path,
	}

	// Last writer wins; see the type comment.
	c.mu.Lock()
	c.entries[m.Key] = e
	c.mu.Unlock()

	return e, nil
}

// Invalidate drops the cache entry for key, if any. The session, its
// output metadata and the tokenizer are discarded together — they are only
// valid as a matched set bound to one on-disk model version. The session
// handle itself is not torn down; in-flight calls holding it complete
// normally.
func (c *SessionCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll drops every cache entry. Used when model files are deleted
// or the application releases heavy resources.
func (c *SessionCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]*CachedModel)
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *SessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
