package ingest

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/forumdb/forumdb/internal/models"
	"github.com/forumdb/forumdb/internal/store"
	apperrors "github.com/forumdb/forumdb/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type mapSource map[string]string

func (m mapSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	s, ok := m[name]
	if !ok {
		return nil, apperrors.New(apperrors.ErrResourceNotFound, name)
	}
	return io.NopCloser(strings.NewReader(s)), nil
}

// recordingStore logs the order of CreateIndex and InsertMany calls.
type recordingStore struct {
	*store.Memory
	mu    sync.Mutex
	calls []string
}

func (r *recordingStore) record(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recordingStore) CreateIndex(ctx context.Context, collection string, idx store.Index) error {
	r.record(collection + ":index:" + idx.Field)
	return r.Memory.CreateIndex(ctx, collection, idx)
}

func (r *recordingStore) InsertMany(ctx context.Context, collection string, docs []any) (int, error) {
	r.record(collection + ":insert")
	return r.Memory.InsertMany(ctx, collection, docs)
}

func (r *recordingStore) callsFor(prefix string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

const (
	postsJSON = `{"posts": {"row": [
		{"Id": "1", "PostTypeId": "1", "Title": "SQL Server indexes", "Body": "<p>How do I add one?</p>"},
		{"Id": "2", "PostTypeId": "2", "ParentId": "1", "Body": "Use CREATE INDEX"},
		{"Id": "2", "PostTypeId": "2", "ParentId": "1", "Body": "duplicate id"},
		{"Id": "3", "PostTypeId": "2", "ParentId": "1", "Body": "ok"}
	]}}`
	tagsJSON  = `{"tags": {"row": [{"Id": "1", "TagName": "sql", "Count": "1"}]}}`
	votesJSON = `{"votes": {"row": [{"Id": "1", "PostId": "1", "VoteTypeId": "2"}]}}`
)

func fullSource() mapSource {
	return mapSource{"Posts.json": postsJSON, "Tags.json": tagsJSON, "Votes.json": votesJSON}
}

func TestRun_PartialFailureKeepsGoing(t *testing.T) {
	st := &recordingStore{Memory: store.NewMemory()}
	p := New(st, fullSource())

	report, err := p.Run(context.Background(), DefaultJobs()...)
	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	posts := report.Results[0]
	assert.Equal(t, models.PostsCollection, posts.Collection)
	assert.Equal(t, 4, posts.Loaded)
	assert.Equal(t, 3, posts.Inserted)
	assert.Equal(t, 1, posts.Rejected)
	assert.NotEmpty(t, posts.FirstRejection)
	assert.Contains(t, posts.Durations, StageIndex, "terms index still built after rejections")

	assert.Equal(t, []string{"posts:index:Id", "posts:insert", "posts:index:terms"}, st.callsFor("posts:"))

	n, err := st.Count(context.Background(), models.PostsCollection, bson.M{}, store.FindOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	assert.Equal(t, 1, report.Results[1].Inserted)
	assert.Equal(t, 1, report.Results[2].Inserted)
}

func TestRun_AttachesTerms(t *testing.T) {
	st := store.NewMemory()
	_, err := New(st, fullSource()).Run(context.Background(), PostsJob())
	require.NoError(t, err)

	docs, err := st.Find(context.Background(), models.PostsCollection, bson.M{"Id": "1"}, store.FindOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, bson.A{"sql", "server", "indexes", "how", "add", "one"}, docs[0]["terms"])

	// "ok" yields no terms, so the field is left out
	docs, err = st.Find(context.Background(), models.PostsCollection, bson.M{"Id": "3"}, store.FindOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.NotContains(t, docs[0], "terms")
}

func TestRun_ResetsExistingCollections(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, st.InsertOne(ctx, models.PostsCollection, bson.M{"Id": "99"}))
	require.NoError(t, st.InsertOne(ctx, "comments", bson.M{"Id": "1"}))

	_, err := New(st, fullSource()).Run(ctx, DefaultJobs()...)
	require.NoError(t, err)

	n, err := st.Count(ctx, models.PostsCollection, bson.M{"Id": "99"}, store.FindOptions{})
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = st.Count(ctx, "comments", bson.M{}, store.FindOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "collections outside the reset set are untouched")
}

func TestRun_FatalErrors(t *testing.T) {
	t.Run("missing resource", func(t *testing.T) {
		src := fullSource()
		delete(src, "Votes.json")
		_, err := New(store.NewMemory(), src).Run(context.Background(), DefaultJobs()...)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
	})
	t.Run("malformed resource", func(t *testing.T) {
		src := fullSource()
		src["Tags.json"] = `{"tags": {"row": [`
		_, err := New(store.NewMemory(), src).Run(context.Background(), DefaultJobs()...)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrMalformedResource))
	})
}

func TestAnnotate_ReplacesExistingTerms(t *testing.T) {
	docs := []bson.D{{{Key: "Title", Value: "Mongo"}, {Key: "terms", Value: bson.A{"stale"}}}}
	out := Annotate(docs)
	require.Len(t, out, 1)
	got, ok := out[0].(bson.D)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"mongo"}, got[1].Value)
}

func TestResources(t *testing.T) {
	assert.Equal(t, []string{"Posts", "Tags", "Votes"}, Resources(DefaultJobs()))
}
