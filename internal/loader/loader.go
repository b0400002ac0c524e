// Package loader reads bulk JSON resources of the form
// {"<collection>": {"row": [ ...documents... ]}}.
package loader

import (
	"context"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/forumdb/forumdb/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// Source opens bulk resources by file name, e.g. "Posts.json".
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// FileName returns the file holding resource, e.g. "Posts" -> "Posts.json".
func FileName(resource string) string {
	return resource + ".json"
}

// Load reads and parses resource from src. The collection key inside the
// file is the lowercased resource name.
func Load(ctx context.Context, src Source, resource string) ([]bson.D, error) {
	rc, err := src.Open(ctx, FileName(resource))
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return Parse(rc, strings.ToLower(resource))
}

type resourceFile map[string]struct {
	Row *[]bson.D `bson:"row"`
}

// Parse decodes the row array of collection. JSON is read as relaxed
// Extended JSON, so field order within each document is preserved.
func Parse(r io.Reader, collection string) ([]bson.D, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}
	var file resourceFile
	if err := bson.UnmarshalExtJSON(data, false, &file); err != nil {
		return nil, apperrors.Newf(apperrors.ErrMalformedResource, "%s: %v", collection, err)
	}
	coll, ok := file[collection]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrMalformedResource, "%s: missing top-level %q key", collection, collection)
	}
	if coll.Row == nil {
		return nil, apperrors.Newf(apperrors.ErrMalformedResource, "%s: missing \"row\" array", collection)
	}
	return *coll.Row, nil
}
