// Package memory is an in-process docstore backend used by tests and local runs
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/yigit/flashclass/internal/docstore"
)

// FailFunc lets tests inject backend failures. A non-nil return aborts the operation.
type FailFunc func(op, collection, id string) error

type collection struct {
	order []string
	docs  map[string]json.RawMessage
}

// Store keeps documents in insertion order per collection
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	now         func() time.Time
	fail        FailFunc
}

// New creates an empty store
func New() *Store {
	return &Store{
		collections: make(map[string]*collection),
		now:         time.Now,
	}
}

// SetClock overrides the server timestamp source
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// FailWith installs a failure hook, nil removes it. op is one of all, find, get, insert, set,
// update or delete, the same names the metrics observer reports.
func (s *Store) FailWith(fn FailFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fn
}

func (s *Store) check(op, coll, id string) error {
	if s.fail == nil {
		return nil
	}
	if err := s.fail(op, coll, id); err != nil {
		return docstore.Unavailable(op, coll, id, err)
	}
	return nil
}

func (s *Store) coll(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]json.RawMessage)}
		s.collections[name] = c
	}
	return c
}

func (s *Store) All(ctx context.Context, coll string) ([]docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check("all", coll, ""); err != nil {
		return nil, err
	}
	return s.snapshot(coll), nil
}

// snapshot copies the collection in insertion order. The caller holds the lock.
func (s *Store) snapshot(coll string) []docstore.Document {
	c, ok := s.collections[coll]
	if !ok {
		return []docstore.Document{}
	}
	out := make([]docstore.Document, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, docstore.Document{ID: id, Data: clone(c.docs[id])})
	}
	return out
}

func (s *Store) Get(ctx context.Context, coll, id string) (docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check("get", coll, id); err != nil {
		return docstore.Document{}, err
	}

	c, ok := s.collections[coll]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	data, ok := c.docs[id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return docstore.Document{ID: id, Data: clone(data)}, nil
}

func (s *Store) Find(ctx context.Context, coll string, q docstore.Query) ([]docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check("find", coll, ""); err != nil {
		return nil, err
	}

	out := make([]docstore.Document, 0)
	for _, d := range s.snapshot(coll) {
		ok, err := docstore.Match(d.Data, q)
		if err != nil {
			return nil, docstore.Unavailable("find", coll, d.ID, err)
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, coll string, fields docstore.Fields) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("insert", coll, ""); err != nil {
		return "", err
	}

	data, err := docstore.Encode(fields, s.now())
	if err != nil {
		return "", err
	}

	c := s.coll(coll)
	for {
		id, err := docstore.NewID()
		if err != nil {
			return "", docstore.Unavailable("insert", coll, "", err)
		}
		if _, taken := c.docs[id]; taken {
			continue
		}
		c.docs[id] = data
		c.order = append(c.order, id)
		return id, nil
	}
}

func (s *Store) Set(ctx context.Context, coll, id string, fields docstore.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("set", coll, id); err != nil {
		return err
	}

	data, err := docstore.Encode(fields, s.now())
	if err != nil {
		return err
	}

	c := s.coll(coll)
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = data
	return nil
}

func (s *Store) Update(ctx context.Context, coll, id string, fields docstore.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("update", coll, id); err != nil {
		return err
	}

	c, ok := s.collections[coll]
	if !ok {
		return docstore.ErrNotFound
	}
	current, ok := c.docs[id]
	if !ok {
		return docstore.ErrNotFound
	}

	patch, err := docstore.Encode(fields, s.now())
	if err != nil {
		return err
	}
	merged, err := docstore.Merge(current, patch)
	if err != nil {
		return docstore.Unavailable("update", coll, id, err)
	}
	c.docs[id] = merged
	return nil
}

func (s *Store) Delete(ctx context.Context, coll, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("delete", coll, id); err != nil {
		return err
	}

	c, ok := s.collections[coll]
	if !ok {
		return docstore.ErrNotFound
	}
	if _, ok := c.docs[id]; !ok {
		return docstore.ErrNotFound
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

func clone(b json.RawMessage) json.RawMessage {
	return append(json.RawMessage(nil), b...)
}
