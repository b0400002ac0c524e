package cmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/forumdb/forumdb/internal/config"
	"github.com/forumdb/forumdb/internal/models"
	"github.com/forumdb/forumdb/internal/search"
	"github.com/forumdb/forumdb/internal/store"
	apperrors "github.com/forumdb/forumdb/pkg/errors"
)

// useMemoryStore points every command at st and records the URIs dialed.
func useMemoryStore(t *testing.T, st store.Store) *[]string {
	t.Helper()
	var dialed []string
	orig := connectStore
	connectStore = func(ctx context.Context, cfg *config.Config, uri string) (store.Store, func(), error) {
		dialed = append(dialed, uri)
		return st, func() {}, nil
	}
	t.Cleanup(func() { connectStore = orig })

	t.Setenv("MONGODB_URI", "")
	t.Setenv("MONGODB_PORT", "")
	t.Setenv("MONGODB_HOST", "localhost")
	t.Setenv("REDIS_HOST", "")
	return &dialed
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	err := root.Execute()
	return out.String(), err
}

func writeCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	files := map[string]string{
		"Posts.json": `{"posts": {"row": [
			{"Id": "1", "PostTypeId": "1", "Title": "Mongo collation", "Body": "<p>strength two</p>", "AnswerCount": 0},
			{"Id": "1", "PostTypeId": "1", "Title": "duplicate", "Body": "id"}
		]}}`,
		"Tags.json":  `{"tags": {"row": [{"Id": "1", "TagName": "mongodb", "Count": 1}]}}`,
		"Votes.json": `{"votes": {"row": []}}`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return root
}

func TestLoadCmd(t *testing.T) {
	st := store.NewMemory()
	dialed := useMemoryStore(t, st)

	out, err := run(t, "\n", "load", "--data-root", writeCorpus(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"mongodb://localhost:27017"}, *dialed, "blank port selects the default")
	assert.Contains(t, out, "Enter the MongoDB port number: ")
	assert.Contains(t, out, "posts")
	assert.Contains(t, out, "Completed in")

	n, err := st.Count(context.Background(), models.PostsCollection, bson.M{"terms": "collation"}, store.FindOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestLoadCmd_InvalidPortExitsWithOne(t *testing.T) {
	dialed := useMemoryStore(t, store.NewMemory())

	_, err := run(t, "abc\n", "load", "--data-root", writeCorpus(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidConnection))
	assert.Equal(t, apperrors.ExitInvalidParameter, apperrors.ExitCode(err))
	assert.Empty(t, *dialed)
}

func TestLoadCmd_MissingDataExitsWithTwo(t *testing.T) {
	st := store.NewMemory()
	useMemoryStore(t, st)
	t.Setenv("MONGODB_PORT", "27018")
	require.NoError(t, st.InsertOne(context.Background(), models.PostsCollection, bson.M{"Id": "9"}))

	_, err := run(t, "", "load", "--data-root", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
	assert.Equal(t, apperrors.ExitFailure, apperrors.ExitCode(err))

	n, err := st.Count(context.Background(), models.PostsCollection, bson.M{}, store.FindOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "nothing is dropped when the corpus is missing")
}

func TestAuthoringCommands(t *testing.T) {
	st := store.NewMemory()
	useMemoryStore(t, st)
	t.Setenv("MONGODB_PORT", "27017")
	ctx := context.Background()

	_, err := run(t, "", "load", "--data-root", writeCorpus(t))
	require.NoError(t, err)

	out, err := run(t, "Index question\nHow do indexes work?\nMongoDB, sql\ny\n", "ask", "--user", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "Question 2 posted!")

	tag, err := st.Find(ctx, models.TagsCollection, bson.M{"TagName": "mongodb"}, store.FindOptions{})
	require.NoError(t, err)
	require.Len(t, tag, 1)
	assert.EqualValues(t, 2, tag[0]["Count"])

	out, err = run(t, "Use explain\ny\n", "answer", "2", "--user", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Answer 3 posted!")

	_, err = run(t, "y\n", "vote", "2", "--user", "7")
	require.NoError(t, err)
	out, err = run(t, "y\n", "vote", "2", "--user", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "already voted")
	assert.Contains(t, out, "Nothing was posted.")

	_, err = run(t, "body\ny\n", "answer", "404")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	out, err = run(t, "", "search", "indexes")
	require.NoError(t, err)
	assert.Contains(t, out, "Index question")
}

func TestSearchCmd_NoKeywords(t *testing.T) {
	useMemoryStore(t, store.NewMemory())
	_, err := run(t, "", "search", "a", "an")
	require.Error(t, err)
}

func TestRouter(t *testing.T) {
	cfg := &config.Config{RateLimit: config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}}
	r := newRouter(cfg, search.NewService(store.NewMemory()), prometheus.NewRegistry(), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/posts/search?q=mongo", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	r = newRouter(&config.Config{}, search.NewService(store.NewMemory()), prometheus.NewRegistry(), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "forumdb_")
}
