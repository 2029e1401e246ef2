// Package docstore is the persistence collaborator: a collection-oriented document store with
// generated ids, equality and array-contains queries, top-level field merges and a
// server-assigned timestamp value.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// IDLength is the length of generated document ids
const IDLength = 20

var (
	// ErrNotFound is returned when a document id does not resolve
	ErrNotFound = errors.New("document not found")

	// ErrUnavailable wraps every failure of the underlying backend
	ErrUnavailable = errors.New("document store unavailable")
)

// Fields is a set of top-level document fields to write
type Fields map[string]any

// Document is a stored document as raw JSON
type Document struct {
	ID   string
	Data json.RawMessage
}

// Decode unmarshals the document body into v
func (d Document) Decode(v any) error {
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("decode document %s: %w", d.ID, err)
	}
	return nil
}

// Op is a query operator
type Op int

const (
	// OpEqual matches documents whose field equals the value
	OpEqual Op = iota
	// OpArrayContains matches documents whose array field contains the value
	OpArrayContains
)

func (o Op) String() string {
	switch o {
	case OpEqual:
		return "=="
	case OpArrayContains:
		return "array-contains"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Query selects documents of a collection by a single top-level field
type Query struct {
	Field string
	Op    Op
	Value any
}

// Equal builds an equality query
func Equal(field string, value any) Query {
	return Query{Field: field, Op: OpEqual, Value: value}
}

// ArrayContains builds an array membership query
func ArrayContains(field string, value any) Query {
	return Query{Field: field, Op: OpArrayContains, Value: value}
}

// Store is implemented by every backend
type Store interface {
	// All returns every document of a collection in the backend's natural order
	All(ctx context.Context, collection string) ([]Document, error)
	// Get returns ErrNotFound when id does not resolve
	Get(ctx context.Context, collection, id string) (Document, error)
	Find(ctx context.Context, collection string, q Query) ([]Document, error)
	// Insert stores a new document under a generated id
	Insert(ctx context.Context, collection string, fields Fields) (string, error)
	// Set creates or replaces the document under a caller-chosen id
	Set(ctx context.Context, collection, id string, fields Fields) error
	// Update merges top-level fields into an existing document
	Update(ctx context.Context, collection, id string, fields Fields) error
	Delete(ctx context.Context, collection, id string) error
	Close() error
}

type serverTimestamp struct{}

// ServerTimestamp is replaced by the write time when a document is stored
var ServerTimestamp any = serverTimestamp{}

// Resolve returns a copy of fields with ServerTimestamp replaced by now
func Resolve(fields Fields, now time.Time) Fields {
	out := make(Fields, len(fields))
	for k, v := range fields {
		if _, ok := v.(serverTimestamp); ok {
			out[k] = now.UTC()
			continue
		}
		out[k] = v
	}
	return out
}

// Encode resolves timestamps and marshals fields into a document body
func Encode(fields Fields, now time.Time) (json.RawMessage, error) {
	data, err := json.Marshal(Resolve(fields, now))
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return data, nil
}

// NewID generates an opaque document id
func NewID() (string, error) {
	return gonanoid.New(IDLength)
}

// OpError is a backend failure. It matches ErrUnavailable and the underlying cause.
type OpError struct {
	Op         string
	Collection string
	ID         string
	Err        error
}

func (e *OpError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("docstore %s %s/%s: %v", e.Op, e.Collection, e.ID, e.Err)
	}
	return fmt.Sprintf("docstore %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *OpError) Unwrap() []error {
	return []error{ErrUnavailable, e.Err}
}

// Unavailable wraps a backend error as an OpError
func Unavailable(op, collection, id string, err error) error {
	return &OpError{Op: op, Collection: collection, ID: id, Err: err}
}
