// Package store is the collection-store boundary used by the ingest pipeline,
// the authoring service and the search API. Mongo talks to a MongoDB
// database; Memory is an in-process stand-in with the same semantics for the
// subset of queries this repository issues.
package store

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/forumdb/forumdb/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// ErrDuplicate is returned when an insert violates a unique index.
var ErrDuplicate = fmt.Errorf("%w: duplicate key", apperrors.ErrConflict)

// Index describes an ascending index on Field, followed by With for a
// compound key. CaseInsensitive applies the en/strength-2 collation, so "SQL"
// and "sql" share index entries. A non-nil Partial restricts the index to
// documents matching that filter.
type Index struct {
	Field           string
	With            []string
	Unique          bool
	CaseInsensitive bool
	Partial         bson.M
}

// Fields returns the key fields in index order.
func (i Index) Fields() []string {
	return append([]string{i.Field}, i.With...)
}

func (i Index) String() string {
	return strings.Join(i.Fields(), "_")
}

// FindOptions tunes Find, Count and Increment. CaseInsensitive compares text
// with the same collation as a CaseInsensitive index.
type FindOptions struct {
	CaseInsensitive bool
	Limit           int64
}

// DocumentError is one rejected document inside an unordered bulk insert.
type DocumentError struct {
	Index   int
	Message string
}

// BulkError reports the documents an unordered InsertMany could not commit.
// Every other document of the batch was inserted.
type BulkError struct {
	Collection string
	Inserted   int
	Failures   []DocumentError
}

func (e *BulkError) Error() string {
	if len(e.Failures) == 0 {
		return fmt.Sprintf("%s: bulk insert incomplete", e.Collection)
	}
	return fmt.Sprintf("%s: %d documents rejected (inserted %d), first at index %d: %s",
		e.Collection, len(e.Failures), e.Inserted, e.Failures[0].Index, e.Failures[0].Message)
}

// Store is the set of collection operations the application needs.
type Store interface {
	CollectionNames(ctx context.Context) ([]string, error)
	Drop(ctx context.Context, collection string) error
	CreateIndex(ctx context.Context, collection string, idx Index) error
	// InsertMany performs an unordered insert: a rejected document never
	// prevents the others from being inserted. It returns the number of
	// inserted documents and a *BulkError when some were rejected.
	InsertMany(ctx context.Context, collection string, docs []any) (int, error)
	InsertOne(ctx context.Context, collection string, doc any) error
	Find(ctx context.Context, collection string, filter bson.M, opts FindOptions) ([]bson.M, error)
	Count(ctx context.Context, collection string, filter bson.M, opts FindOptions) (int64, error)
	// Increment atomically adds delta to field on the first document matching
	// filter and reports how many documents matched (0 or 1).
	Increment(ctx context.Context, collection string, filter bson.M, field string, delta int, opts FindOptions) (int64, error)
	// MaxID returns the largest numeric Id in collection, or 0 when empty.
	MaxID(ctx context.Context, collection string) (int64, error)
}
