package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// caseInsensitive is the collation used for tag names and the terms index.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// Mongo implements Store on a MongoDB database.
type Mongo struct {
	db *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

func (m *Mongo) CollectionNames(ctx context.Context) ([]string, error) {
	names, err := m.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return names, nil
}

func (m *Mongo) Drop(ctx context.Context, collection string) error {
	if err := m.db.Collection(collection).Drop(ctx); err != nil {
		return fmt.Errorf("drop %s: %w", collection, err)
	}
	return nil
}

func (m *Mongo) CreateIndex(ctx context.Context, collection string, idx Index) error {
	opts := options.Index()
	if idx.Unique {
		opts.SetUnique(true)
	}
	if idx.CaseInsensitive {
		opts.SetCollation(caseInsensitive)
	}
	if idx.Partial != nil {
		opts.SetPartialFilterExpression(idx.Partial)
	}
	keys := bson.D{}
	for _, f := range idx.Fields() {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	model := mongo.IndexModel{Keys: keys, Options: opts}
	if _, err := m.db.Collection(collection).Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("create index %s.%s: %w", collection, idx, err)
	}
	return nil
}

func (m *Mongo) InsertMany(ctx context.Context, collection string, docs []any) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	res, err := m.db.Collection(collection).InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return len(res.InsertedIDs), nil
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) && bwe.WriteConcernError == nil && len(bwe.WriteErrors) > 0 {
		be := &BulkError{Collection: collection}
		for _, we := range bwe.WriteErrors {
			be.Failures = append(be.Failures, DocumentError{Index: we.Index, Message: we.Message})
		}
		be.Inserted = len(docs) - len(be.Failures)
		return be.Inserted, be
	}
	return 0, fmt.Errorf("insert many into %s: %w", collection, err)
}

func (m *Mongo) InsertOne(ctx context.Context, collection string, doc any) error {
	_, err := m.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", collection, ErrDuplicate)
		}
		return fmt.Errorf("insert into %s: %w", collection, err)
	}
	return nil
}

func (m *Mongo) Find(ctx context.Context, collection string, filter bson.M, o FindOptions) ([]bson.M, error) {
	opts := options.Find()
	if o.CaseInsensitive {
		opts.SetCollation(caseInsensitive)
	}
	if o.Limit > 0 {
		opts.SetLimit(o.Limit)
	}
	cur, err := m.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", collection, err)
	}
	defer cur.Close(ctx)
	out := []bson.M{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	return out, nil
}

func (m *Mongo) Count(ctx context.Context, collection string, filter bson.M, o FindOptions) (int64, error) {
	opts := options.Count()
	if o.CaseInsensitive {
		opts.SetCollation(caseInsensitive)
	}
	if o.Limit > 0 {
		opts.SetLimit(o.Limit)
	}
	n, err := m.db.Collection(collection).CountDocuments(ctx, filter, opts)
	if err != nil {
		return 0, fmt.Errorf("count in %s: %w", collection, err)
	}
	return n, nil
}

func (m *Mongo) Increment(ctx context.Context, collection string, filter bson.M, field string, delta int, o FindOptions) (int64, error) {
	opts := options.Update()
	if o.CaseInsensitive {
		opts.SetCollation(caseInsensitive)
	}
	update := bson.M{"$inc": bson.M{field: delta}}
	res, err := m.db.Collection(collection).UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return 0, fmt.Errorf("increment %s.%s: %w", collection, field, err)
	}
	return res.MatchedCount, nil
}

// MaxID converts Id to a long server-side; ids that are not numeric are ignored.
func (m *Mongo) MaxID(ctx context.Context, collection string) (int64, error) {
	toLong := bson.D{{Key: "$convert", Value: bson.D{
		{Key: "input", Value: "$Id"},
		{Key: "to", Value: "long"},
		{Key: "onError", Value: nil},
		{Key: "onNull", Value: nil},
	}}}
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "max", Value: bson.D{{Key: "$max", Value: toLong}}},
		}}},
	}
	cur, err := m.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("max id of %s: %w", collection, err)
	}
	defer cur.Close(ctx)
	var rows []struct {
		Max *int64 `bson:"max"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("decode max id of %s: %w", collection, err)
	}
	if len(rows) == 0 || rows[0].Max == nil {
		return 0, nil
	}
	return *rows[0].Max, nil
}
