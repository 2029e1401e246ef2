package docstore

import (
	"context"
	"time"
)

// Observer receives one call per store operation
type Observer interface {
	ObserveStoreOp(op, collection string, err error, elapsed time.Duration)
}

type instrumented struct {
	next Store
	obs  Observer
}

// Instrument wraps s so every operation is reported to obs
func Instrument(s Store, obs Observer) Store {
	if obs == nil {
		return s
	}
	return &instrumented{next: s, obs: obs}
}

func (s *instrumented) observe(op, collection string, start time.Time, err error) {
	s.obs.ObserveStoreOp(op, collection, err, time.Since(start))
}

func (s *instrumented) All(ctx context.Context, collection string) ([]Document, error) {
	start := time.Now()
	docs, err := s.next.All(ctx, collection)
	s.observe("all", collection, start, err)
	return docs, err
}

func (s *instrumented) Get(ctx context.Context, collection, id string) (Document, error) {
	start := time.Now()
	doc, err := s.next.Get(ctx, collection, id)
	s.observe("get", collection, start, err)
	return doc, err
}

func (s *instrumented) Find(ctx context.Context, collection string, q Query) ([]Document, error) {
	start := time.Now()
	docs, err := s.next.Find(ctx, collection, q)
	s.observe("find", collection, start, err)
	return docs, err
}

func (s *instrumented) Insert(ctx context.Context, collection string, fields Fields) (string, error) {
	start := time.Now()
	id, err := s.next.Insert(ctx, collection, fields)
	s.observe("insert", collection, start, err)
	return id, err
}

func (s *instrumented) Set(ctx context.Context, collection, id string, fields Fields) error {
	start := time.Now()
	err := s.next.Set(ctx, collection, id, fields)
	s.observe("set", collection, start, err)
	return err
}

func (s *instrumented) Update(ctx context.Context, collection, id string, fields Fields) error {
	start := time.Now()
	err := s.next.Update(ctx, collection, id, fields)
	s.observe("update", collection, start, err)
	return err
}

func (s *instrumented) Delete(ctx context.Context, collection, id string) error {
	start := time.Now()
	err := s.next.Delete(ctx, collection, id)
	s.observe("delete", collection, start, err)
	return err
}

func (s *instrumented) Close() error {
	return s.next.Close()
}
