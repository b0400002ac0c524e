// Package search answers keyword queries against the terms index of posts.
package search

import (
	"context"
	"strings"

	"github.com/forumdb/forumdb/internal/models"
	"github.com/forumdb/forumdb/internal/store"
	"github.com/forumdb/forumdb/internal/terms"
	"github.com/forumdb/forumdb/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Hit is a question matching at least one keyword.
type Hit struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CreationDate string `json:"creationDate"`
	Score        any    `json:"score"`
	AnswerCount  any    `json:"answerCount"`
}

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Keywords splits a query into the terms it can match. Words too short to be
// indexed are dropped.
func Keywords(query string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, k := range terms.Tokenize(query) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// Search returns up to limit questions whose terms contain any keyword,
// compared case-insensitively.
func (s *Service) Search(ctx context.Context, keywords []string, limit int64) ([]Hit, error) {
	if len(keywords) == 0 {
		return []Hit{}, nil
	}
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	filter := bson.M{
		"PostTypeId": models.QuestionType,
		"terms":      bson.M{"$in": keywords},
	}
	docs, err := s.store.Find(ctx, models.PostsCollection, filter, store.FindOptions{CaseInsensitive: true, Limit: limit})
	if err != nil {
		return nil, err
	}
	metrics.SearchQueries.Inc()

	hits := make([]Hit, 0, len(docs))
	for _, d := range docs {
		hits = append(hits, Hit{
			ID:           str(d["Id"]),
			Title:        strings.TrimSpace(str(d["Title"])),
			CreationDate: str(d["CreationDate"]),
			Score:        d["Score"],
			AnswerCount:  d["AnswerCount"],
		})
	}
	return hits, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
