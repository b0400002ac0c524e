package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMemory_InsertManyUnordered(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.CreateIndex(ctx, "posts", Index{Field: "Id", Unique: true}))

	docs := []any{
		bson.D{{Key: "Id", Value: "1"}},
		bson.D{{Key: "Id", Value: "2"}},
		bson.D{{Key: "Id", Value: "1"}},
		bson.D{{Key: "Id", Value: "3"}},
	}
	n, err := m.InsertMany(ctx, "posts", docs)
	assert.Equal(t, 3, n)
	var be *BulkError
	require.True(t, errors.As(err, &be))
	require.Len(t, be.Failures, 1)
	assert.Equal(t, 2, be.Failures[0].Index)
	assert.Equal(t, 3, be.Inserted)

	count, err := m.Count(ctx, "posts", bson.M{}, FindOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestMemory_InsertOneDuplicate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.CreateIndex(ctx, "tags", Index{Field: "TagName", Unique: true, CaseInsensitive: true}))
	require.NoError(t, m.InsertOne(ctx, "tags", bson.M{"Id": "1", "TagName": "sql", "Count": 1}))

	err := m.InsertOne(ctx, "tags", bson.M{"Id": "2", "TagName": "SQL", "Count": 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))
}

func TestMemory_CompoundPartialIndex(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	idx := Index{
		Field:   "UserId",
		With:    []string{"PostId"},
		Unique:  true,
		Partial: bson.M{"UserId": bson.M{"$exists": true}},
	}
	require.NoError(t, m.InsertOne(ctx, "votes", bson.M{"Id": "1", "PostId": "10"}))
	require.NoError(t, m.InsertOne(ctx, "votes", bson.M{"Id": "2", "PostId": "10"}))
	require.NoError(t, m.CreateIndex(ctx, "votes", idx), "documents outside the partial filter never collide")
	assert.Equal(t, "UserId_PostId", idx.String())

	require.NoError(t, m.InsertOne(ctx, "votes", bson.M{"Id": "3", "UserId": "5", "PostId": "10"}))
	require.NoError(t, m.InsertOne(ctx, "votes", bson.M{"Id": "4", "UserId": "5", "PostId": "11"}))
	require.NoError(t, m.InsertOne(ctx, "votes", bson.M{"Id": "5", "UserId": "6", "PostId": "10"}))
	require.NoError(t, m.InsertOne(ctx, "votes", bson.M{"Id": "6", "PostId": "10"}))

	err := m.InsertOne(ctx, "votes", bson.M{"Id": "7", "UserId": "5", "PostId": "10"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))

	got, err := m.Find(ctx, "votes", bson.M{"UserId": bson.M{"$exists": false}}, FindOptions{})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestMemory_FindCaseInsensitiveArrayMatch(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.InsertOne(ctx, "posts", bson.M{"Id": "1", "terms": []string{"sql", "server"}}))
	require.NoError(t, m.InsertOne(ctx, "posts", bson.M{"Id": "2", "terms": []string{"golang"}}))
	require.NoError(t, m.InsertOne(ctx, "posts", bson.M{"Id": "3"}))

	got, err := m.Find(ctx, "posts", bson.M{"terms": "SQL"}, FindOptions{CaseInsensitive: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0]["Id"])

	got, err = m.Find(ctx, "posts", bson.M{"terms": "SQL"}, FindOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = m.Find(ctx, "posts", bson.M{"terms": bson.M{"$in": []string{"GOLANG", "server"}}}, FindOptions{CaseInsensitive: true})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = m.Find(ctx, "posts", bson.M{}, FindOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMemory_Increment(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.InsertOne(ctx, "tags", bson.M{"Id": "1", "TagName": "Go", "Count": 4}))

	n, err := m.Increment(ctx, "tags", bson.M{"TagName": "go"}, "Count", 1, FindOptions{CaseInsensitive: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = m.Increment(ctx, "tags", bson.M{"TagName": "rust"}, "Count", 1, FindOptions{CaseInsensitive: true})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	docs, err := m.Find(ctx, "tags", bson.M{"Id": "1"}, FindOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.EqualValues(t, 5, docs[0]["Count"])
}

func TestMemory_MaxIDAndDrop(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	max, err := m.MaxID(ctx, "votes")
	require.NoError(t, err)
	assert.Zero(t, max)

	_, err = m.InsertMany(ctx, "votes", []any{
		bson.M{"Id": "9"}, bson.M{"Id": "10"}, bson.M{"Id": "x"}, bson.M{"Id": "2"},
	})
	require.NoError(t, err)
	max, err = m.MaxID(ctx, "votes")
	require.NoError(t, err)
	assert.EqualValues(t, 10, max)

	names, err := m.CollectionNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"votes"}, names)

	require.NoError(t, m.Drop(ctx, "votes"))
	names, err = m.CollectionNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}
