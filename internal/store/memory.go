package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// Memory is an in-process Store. Documents are normalized through a BSON
// round trip on insert, so they compare the way they would in MongoDB.
type Memory struct {
	mu          sync.Mutex
	collections map[string]*memCollection
}

type memCollection struct {
	docs    []bson.M
	indexes []Index
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string]*memCollection)}
}

// collection returns the named collection, creating it on first use as
// MongoDB does. Callers hold m.mu.
func (m *Memory) collection(name string) *memCollection {
	c, ok := m.collections[name]
	if !ok {
		c = &memCollection{}
		m.collections[name] = c
	}
	return c
}

func (m *Memory) CollectionNames(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) Drop(ctx context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, collection)
	return nil
}

func (m *Memory) CreateIndex(ctx context.Context, collection string, idx Index) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.collection(collection)
	if idx.Unique {
		for i := range c.docs {
			for j := i + 1; j < len(c.docs); j++ {
				if sameKey(c.docs[i], c.docs[j], idx) {
					return fmt.Errorf("create index %s.%s: %w", collection, idx, ErrDuplicate)
				}
			}
		}
	}
	c.indexes = append(c.indexes, idx)
	return nil
}

func (m *Memory) InsertMany(ctx context.Context, collection string, docs []any) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.collection(collection)
	be := &BulkError{Collection: collection}
	for i, doc := range docs {
		if err := c.insert(doc); err != nil {
			be.Failures = append(be.Failures, DocumentError{Index: i, Message: err.Error()})
			continue
		}
		be.Inserted++
	}
	if len(be.Failures) > 0 {
		return be.Inserted, be
	}
	return be.Inserted, nil
}

func (m *Memory) InsertOne(ctx context.Context, collection string, doc any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.collection(collection).insert(doc); err != nil {
		return fmt.Errorf("%s: %w", collection, err)
	}
	return nil
}

func (c *memCollection) insert(doc any) error {
	m, err := normalize(doc)
	if err != nil {
		return err
	}
	for _, idx := range c.indexes {
		if !idx.Unique {
			continue
		}
		for _, existing := range c.docs {
			if sameKey(existing, m, idx) {
				return fmt.Errorf("%w on %s: %v", ErrDuplicate, idx, keyOf(m, idx))
			}
		}
	}
	c.docs = append(c.docs, m)
	return nil
}

func (m *Memory) Find(ctx context.Context, collection string, filter bson.M, o FindOptions) ([]bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []bson.M{}
	c, ok := m.collections[collection]
	if !ok {
		return out, nil
	}
	for _, doc := range c.docs {
		if o.Limit > 0 && int64(len(out)) >= o.Limit {
			break
		}
		if matches(doc, filter, o.CaseInsensitive) {
			out = append(out, copyDoc(doc))
		}
	}
	return out, nil
}

func (m *Memory) Count(ctx context.Context, collection string, filter bson.M, o FindOptions) (int64, error) {
	docs, err := m.Find(ctx, collection, filter, o)
	return int64(len(docs)), err
}

func (m *Memory) Increment(ctx context.Context, collection string, filter bson.M, field string, delta int, o FindOptions) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[collection]
	if !ok {
		return 0, nil
	}
	for _, doc := range c.docs {
		if !matches(doc, filter, o.CaseInsensitive) {
			continue
		}
		cur, present := doc[field]
		if !present {
			doc[field] = int64(delta)
			return 1, nil
		}
		n, ok := toFloat(cur)
		if !ok {
			return 0, fmt.Errorf("increment %s.%s: field is not numeric", collection, field)
		}
		switch cur.(type) {
		case float64:
			doc[field] = n + float64(delta)
		default:
			doc[field] = int64(n) + int64(delta)
		}
		return 1, nil
	}
	return 0, nil
}

func (m *Memory) MaxID(ctx context.Context, collection string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[collection]
	if !ok {
		return 0, nil
	}
	var max int64
	for _, doc := range c.docs {
		var id int64
		switch v := doc["Id"].(type) {
		case string:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				continue
			}
			id = n
		default:
			n, ok := toFloat(v)
			if !ok {
				continue
			}
			id = int64(n)
		}
		if id > max {
			max = id
		}
	}
	return max, nil
}

func normalize(doc any) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return m, nil
}

func copyDoc(doc bson.M) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
