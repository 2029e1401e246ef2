// Package natskv stores each collection in its own NATS JetStream key-value bucket
package natskv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/yigit/flashclass/internal/docstore"
)

// updateAttempts bounds the compare-and-swap loop when a concurrent writer bumps the revision.
// Transport errors are never retried.
const updateAttempts = 3

// Config selects bucket naming and retention
type Config struct {
	BucketPrefix string
	History      uint8
}

// Store is a docstore backed by JetStream KV
type Store struct {
	js      jetstream.JetStream
	nc      *nats.Conn
	cfg     Config
	now     func() time.Time
	mu      sync.Mutex
	buckets map[string]jetstream.KeyValue
}

// Connect dials NATS and returns a Store owning the connection
func Connect(url string, cfg Config) (*Store, error) {
	nc, err := nats.Connect(url, nats.Name("flashclass"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}
	s := New(js, cfg)
	s.nc = nc
	return s, nil
}

// New creates a Store on an existing JetStream context
func New(js jetstream.JetStream, cfg Config) *Store {
	if cfg.History == 0 {
		cfg.History = 1
	}
	return &Store{
		js:      js,
		cfg:     cfg,
		now:     time.Now,
		buckets: make(map[string]jetstream.KeyValue),
	}
}

// BucketName maps a collection to its bucket, e.g. "flashcards" -> "FLASHCLASS_FLASHCARDS"
func BucketName(prefix, collection string) string {
	name := strings.ToUpper(collection)
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

func (s *Store) bucket(ctx context.Context, collection string) (jetstream.KeyValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if kv, ok := s.buckets[collection]; ok {
		return kv, nil
	}

	name := BucketName(s.cfg.BucketPrefix, collection)
	kv, err := s.js.KeyValue(ctx, name)
	if err != nil {
		kv, err = s.js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      name,
			Description: fmt.Sprintf("FlashClass %s documents", collection),
			History:     s.cfg.History,
		})
		if err != nil {
			return nil, docstore.Unavailable("bucket", collection, "", err)
		}
	}
	s.buckets[collection] = kv
	return kv, nil
}

func (s *Store) All(ctx context.Context, collection string) ([]docstore.Document, error) {
	kv, err := s.bucket(ctx, collection)
	if err != nil {
		return nil, err
	}

	keys, err := kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return []docstore.Document{}, nil
		}
		return nil, docstore.Unavailable("all", collection, "", err)
	}

	docs := make([]docstore.Document, 0, len(keys))
	for _, key := range keys {
		entry, err := kv.Get(ctx, key)
		if err != nil {
			// deleted between listing and reading
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				continue
			}
			return nil, docstore.Unavailable("all", collection, key, err)
		}
		docs = append(docs, docstore.Document{ID: key, Data: entry.Value()})
	}
	return docs, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	kv, err := s.bucket(ctx, collection)
	if err != nil {
		return docstore.Document{}, err
	}

	entry, err := kv.Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return docstore.Document{}, docstore.ErrNotFound
		}
		return docstore.Document{}, docstore.Unavailable("get", collection, id, err)
	}
	return docstore.Document{ID: id, Data: entry.Value()}, nil
}

func (s *Store) Find(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	docs, err := s.All(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]docstore.Document, 0)
	for _, d := range docs {
		ok, err := docstore.Match(d.Data, q)
		if err != nil {
			return nil, docstore.Unavailable("find", collection, d.ID, err)
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	kv, err := s.bucket(ctx, collection)
	if err != nil {
		return "", err
	}
	data, err := docstore.Encode(fields, s.now())
	if err != nil {
		return "", err
	}

	for {
		id, err := docstore.NewID()
		if err != nil {
			return "", docstore.Unavailable("insert", collection, "", err)
		}
		if _, err := kv.Create(ctx, id, data); err != nil {
			if errors.Is(err, jetstream.ErrKeyExists) {
				continue
			}
			return "", docstore.Unavailable("insert", collection, id, err)
		}
		return id, nil
	}
}

func (s *Store) Set(ctx context.Context, collection, id string, fields docstore.Fields) error {
	kv, err := s.bucket(ctx, collection)
	if err != nil {
		return err
	}
	data, err := docstore.Encode(fields, s.now())
	if err != nil {
		return err
	}
	if _, err := kv.Put(ctx, id, data); err != nil {
		return docstore.Unavailable("set", collection, id, err)
	}
	return nil
}

// Update merges fields under the entry's revision so a concurrent writer's other fields survive
func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	kv, err := s.bucket(ctx, collection)
	if err != nil {
		return err
	}
	patch, err := docstore.Encode(fields, s.now())
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < updateAttempts; attempt++ {
		entry, err := kv.Get(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return docstore.ErrNotFound
			}
			return docstore.Unavailable("update", collection, id, err)
		}

		merged, err := docstore.Merge(entry.Value(), patch)
		if err != nil {
			return docstore.Unavailable("update", collection, id, err)
		}

		if _, err := kv.Update(ctx, id, merged, entry.Revision()); err != nil {
			if !isRevisionConflict(err) {
				return docstore.Unavailable("update", collection, id, err)
			}
			lastErr = err
			continue
		}
		return nil
	}
	return docstore.Unavailable("update", collection, id, lastErr)
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	kv, err := s.bucket(ctx, collection)
	if err != nil {
		return err
	}
	if _, err := kv.Get(ctx, id); err != nil {
		if isNotFound(err) {
			return docstore.ErrNotFound
		}
		return docstore.Unavailable("delete", collection, id, err)
	}
	if err := kv.Delete(ctx, id); err != nil {
		return docstore.Unavailable("delete", collection, id, err)
	}
	return nil
}

// Close drains the connection if the store dialed it
func (s *Store) Close() error {
	if s.nc == nil {
		return nil
	}
	return s.nc.Drain()
}

func isNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted)
}

// isRevisionConflict reports a KV update rejected because the entry moved past the expected revision
func isRevisionConflict(err error) bool {
	var apiErr *jetstream.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
}
