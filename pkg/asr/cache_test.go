package asr

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// fakeSession is an in-memory Session that replays canned outputs and
// records what it was asked to run.
type fakeSession struct {
	outputs map[string]Tensor
	runErr  error

	mu        sync.Mutex
	lastInput map[string]Tensor
	runs      int
	closed    bool
}

func (s *fakeSession) Run(inputs map[string]Tensor, outputNames []string) (map[string]Tensor, error) {
	s.mu.Lock()
	s.lastInput = inputs
	s.runs++
	s.mu.Unlock()
	if s.runErr != nil {
		return nil, s.runErr
	}
	return s.outputs, nil
}

func (s *fakeSession) OutputNames() []string {
	names := make([]string, 0, len(s.outputs))
	for n := range s.outputs {
		names = append(names, n)
	}
	return names
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// fakeFactory counts constructions so tests can assert cache hits.
type fakeFactory struct {
	outputs map[string]Tensor
	err     error

	mu       sync.Mutex
	loads    int
	sessions []*fakeSession
}

func (f *fakeFactory) NewSession(modelPath string) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	s := &fakeSession{outputs: f.outputs}
	f.sessions = append(f.sessions, s)
	return s, nil
}

func (f *fakeFactory) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

// writeModelDir creates a model directory with a dummy model file and a
// small vocabulary.
func writeModelDir(t *testing.T, modelName string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, modelName), []byte("onnx"), 0o644); err != nil {
		t.Fatal(err)
	}
	vocab := "<blk> 0\n<s> 1\n</s> 2\n▁hello 3\n▁world 4\n"
	if err := os.WriteFile(filepath.Join(dir, VocabFileName), []byte(vocab), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestCacheReusesSession(t *testing.T) {
	factory := &fakeFactory{}
	cache := NewSessionCache(factory)
	m := Model{Key: "fc", Dir: writeModelDir(t, "model.onnx"), Family: FastConformer{}}

	first, err := cache.Get(m)
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}
	second, err := cache.Get(m)
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if first != second {
		t.Error("expected the same cached entry on repeat Get")
	}
	if n := factory.loadCount(); n != 1 {
		t.Errorf("loads = %d, want 1", n)
	}
	if first.Tokenizer == nil || first.Tokenizer.BlankID() != 0 {
		t.Error("tokenizer not loaded alongside session")
	}
}

func TestCacheIndependentKeys(t *testing.T) {
	factory := &fakeFactory{}
	cache := NewSessionCache(factory)
	dir := writeModelDir(t, "model.onnx")

	a, err := cache.Get(Model{Key: "a", Dir: dir, Family: FastConformer{}})
	if err != nil {
		t.Fatal(err)
	}
	b, err := cache.Get(Model{Key: "b", Dir: dir, Family: FastConformer{}})
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("different keys must not share a cache entry")
	}
	if n := factory.loadCount(); n != 2 {
		t.Errorf("loads = %d, want 2", n)
	}
}

func TestCacheInvalidateForcesReload(t *testing.T) {
	factory := &fakeFactory{}
	cache := NewSessionCache(factory)
	m := Model{Key: "fc", Dir: writeModelDir(t, "model.onnx"), Family: FastConformer{}}

	if _, err := cache.Get(m); err != nil {
		t.Fatal(err)
	}
	cache.Invalidate(m.Key)
	if cache.Len() != 0 {
		t.Fatalf("Len = %d after Invalidate, want 0", cache.Len())
	}
	if _, err := cache.Get(m); err != nil {
		t.Fatal(err)
	}
	if n := factory.loadCount(); n != 2 {
		t.Errorf("loads = %d after invalidate, want 2", n)
	}
}

func TestCacheFailedLoadNotCached(t *testing.T) {
	factory := &fakeFactory{err: fmt.Errorf("engine refused")}
	cache := NewSessionCache(factory)
	m := Model{Key: "fc", Dir: writeModelDir(t, "model.onnx"), Family: FastConformer{}}

	for i := 0; i < 2; i++ {
		_, err := cache.Get(m)
		if !errors.Is(err, ErrModelLoadFailed) {
			t.Fatalf("Get %d: err = %v, want ErrModelLoadFailed", i, err)
		}
	}
	if cache.Len() != 0 {
		t.Error("failed loads must not be cached")
	}
	if n := factory.loadCount(); n != 2 {
		t.Errorf("loads = %d, want 2 (one per attempt)", n)
	}
}

func TestCacheMissingModelFile(t *testing.T) {
	factory := &fakeFactory{}
	cache := NewSessionCache(factory)
	m := Model{Key: "fc", Dir: t.TempDir(), Family: FastConformer{}}

	_, err := cache.Get(m)
	if !errors.Is(err, ErrModelLoadFailed) {
		t.Fatalf("err = %v, want ErrModelLoadFailed", err)
	}
	if factory.loadCount() != 0 {
		t.Error("factory must not run when the model file is missing")
	}
}

func TestCacheMissingVocabClosesSession(t *testing.T) {
	factory := &fakeFactory{}
	cache := NewSessionCache(factory)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "model.onnx"), []byte("onnx"), 0o644); err != nil {
		t.Fatal(err)
	}
	m := Model{Key: "fc", Dir: dir, Family: FastConformer{}}

	_, err := cache.Get(m)
	if !errors.Is(err, ErrModelLoadFailed) {
		t.Fatalf("err = %v, want ErrModelLoadFailed", err)
	}
	if len(factory.sessions) != 1 || !factory.sessions[0].closed {
		t.Error("session must be closed when the vocabulary fails to load")
	}
}

func TestCacheConcurrentFirstUse(t *testing.T) {
	factory := &fakeFactory{}
	cache := NewSessionCache(factory)
	m := Model{Key: "fc", Dir: writeModelDir(t, "model.onnx"), Family: FastConformer{}}

	const goroutines = 8
	var wg sync.WaitGroup
	entries := make([]*CachedModel, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := cache.Get(m)
			if err != nil {
				t.Errorf("concurrent Get: %v", err)
				return
			}
			entries[i] = e
		}(i)
	}
	wg.Wait()

	// Racing first-use calls may each construct a session, but every
	// caller must get a complete entry and the cache must settle on one.
	for i, e := range entries {
		if e == nil || e.Session == nil || e.Tokenizer == nil {
			t.Fatalf("goroutine %d got a torn entry: %+v", i, e)
		}
	}
	if cache.Len() != 1 {
		t.Errorf("Len = %d after concurrent Get, want 1", cache.Len())
	}
}
