// Package authoring commits user-authored questions, answers and votes.
//
// Post ids are allocated before the user confirms, so an abandoned draft
// leaves a gap in the id space. Ids are never reused.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/forumdb/forumdb/internal/idalloc"
	"github.com/forumdb/forumdb/internal/models"
	"github.com/forumdb/forumdb/internal/store"
	"github.com/forumdb/forumdb/internal/terms"
	apperrors "github.com/forumdb/forumdb/pkg/errors"
	"github.com/forumdb/forumdb/pkg/logger"
	"github.com/forumdb/forumdb/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
)

// ErrAlreadyVoted rejects a second vote by the same user on the same post.
var ErrAlreadyVoted = fmt.Errorf("%w: already voted on this post", apperrors.ErrConflict)

// maxAttempts bounds retries after a concurrent writer wins a race.
const maxAttempts = 3

// QuestionDraft is the user input of a question.
type QuestionDraft struct {
	Title string
	Body  string
	Tags  []string
}

type Service struct {
	store store.Store
	ids   idalloc.Allocator
	now   func() time.Time
	log   *logger.Component
}

type Option func(*Service)

// WithClock replaces time.Now as the source of creation dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(st store.Store, ids idalloc.Allocator, opts ...Option) *Service {
	s := &Service{store: st, ids: ids, now: time.Now, log: logger.WithComponent("authoring")}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Seed raises the allocator to the ids already stored.
func (s *Service) Seed(ctx context.Context) error {
	return idalloc.Seed(ctx, s.ids, s.store, models.PostsCollection, models.TagsCollection, models.VotesCollection)
}

func (s *Service) AllocatePostID(ctx context.Context) (string, error) {
	return s.ids.Next(ctx, models.PostsCollection)
}

// ParseTags splits comma-separated input into lowercased tag names, dropping
// blanks and repeats. First occurrences keep their order.
func ParseTags(input string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(input, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// CommitQuestion upserts the draft's tags and inserts the question under id.
// The returned question carries the id it was stored with, which differs from
// id only if another writer had taken it.
func (s *Service) CommitQuestion(ctx context.Context, id, author string, d QuestionDraft) (*models.Question, error) {
	q := models.NewQuestion(id, author, d.Title, d.Body, d.Tags, s.now())
	q.Terms = terms.Extract(q)
	for _, tag := range d.Tags {
		if err := s.upsertTag(ctx, tag); err != nil {
			return nil, err
		}
	}
	if err := s.insert(ctx, models.PostsCollection, &q.ID, q, nil); err != nil {
		return nil, err
	}
	metrics.AuthoringCommits.WithLabelValues("question").Inc()
	s.log.Infof("question %s committed with %d tags", q.ID, len(d.Tags))
	return q, nil
}

// QuestionExists reports whether id names a question.
func (s *Service) QuestionExists(ctx context.Context, id string) (bool, error) {
	n, err := s.store.Count(ctx, models.PostsCollection, bson.M{"Id": id, "PostTypeId": models.QuestionType}, store.FindOptions{Limit: 1})
	return n > 0, err
}

// CommitAnswer inserts an answer to questionID and bumps the question's
// AnswerCount.
func (s *Service) CommitAnswer(ctx context.Context, id, author, questionID, body string) (*models.Answer, error) {
	ok, err := s.QuestionExists(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrNotFound, "question %s", questionID)
	}
	a := models.NewAnswer(id, author, questionID, body, s.now())
	a.Terms = terms.Extract(a)
	if err := s.insert(ctx, models.PostsCollection, &a.ID, a, nil); err != nil {
		return nil, err
	}
	if _, err := s.store.Increment(ctx, models.PostsCollection, bson.M{"Id": questionID}, "AnswerCount", 1, store.FindOptions{}); err != nil {
		return nil, err
	}
	metrics.AuthoringCommits.WithLabelValues("answer").Inc()
	s.log.Infof("answer %s to question %s committed", a.ID, questionID)
	return a, nil
}

// HasVoted reports whether user already voted on postID. Anonymous users are
// never matched.
func (s *Service) HasVoted(ctx context.Context, user, postID string) (bool, error) {
	if user == "" {
		return false, nil
	}
	n, err := s.store.Count(ctx, models.VotesCollection, bson.M{"UserId": user, "PostId": postID}, store.FindOptions{Limit: 1})
	return n > 0, err
}

// CommitVote records an up vote by user on postID.
func (s *Service) CommitVote(ctx context.Context, user, postID string) (*models.Vote, error) {
	voted, err := s.HasVoted(ctx, user, postID)
	if err != nil {
		return nil, err
	}
	if voted {
		metrics.AuthoringRejected.WithLabelValues("already_voted").Inc()
		return nil, ErrAlreadyVoted
	}
	id, err := s.ids.Next(ctx, models.VotesCollection)
	if err != nil {
		return nil, err
	}
	v := models.NewVote(id, postID, user, s.now())
	// a duplicate key may come from the per-user vote index rather than Id
	votedMeanwhile := func(ctx context.Context) error {
		voted, err := s.HasVoted(ctx, user, postID)
		if err != nil {
			return err
		}
		if voted {
			metrics.AuthoringRejected.WithLabelValues("already_voted").Inc()
			return ErrAlreadyVoted
		}
		return nil
	}
	if err := s.insert(ctx, models.VotesCollection, &v.ID, v, votedMeanwhile); err != nil {
		return nil, err
	}
	metrics.AuthoringCommits.WithLabelValues("vote").Inc()
	s.log.Infof("vote %s on post %s committed", v.ID, postID)
	return v, nil
}

// upsertTag increments the count of a tag matching name case-insensitively,
// or creates it. Losing a creation race to another writer surfaces as a
// duplicate key, after which the increment is retried.
func (s *Service) upsertTag(ctx context.Context, name string) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		n, err := s.store.Increment(ctx, models.TagsCollection, bson.M{"TagName": name}, "Count", 1, store.FindOptions{CaseInsensitive: true})
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		id, err := s.ids.Next(ctx, models.TagsCollection)
		if err != nil {
			return err
		}
		err = s.store.InsertOne(ctx, models.TagsCollection, models.NewTag(id, name))
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return err
		}
		s.log.Warnf("tag %q: %v, retrying", name, err)
		if err := s.catchUp(ctx, models.TagsCollection); err != nil {
			return err
		}
	}
	metrics.AuthoringRejected.WithLabelValues("tag_conflict").Inc()
	return apperrors.Newf(apperrors.ErrConflict, "tag %q kept changing concurrently", name)
}

// insert stores doc, moving *id to a fresh id when the current one was
// taken by another writer. On a duplicate key, conflict (when non-nil) gets
// the first say: a non-nil result ends the attempt.
func (s *Service) insert(ctx context.Context, collection string, id *string, doc any, conflict func(context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := s.store.InsertOne(ctx, collection, doc)
		if err == nil || !errors.Is(err, store.ErrDuplicate) {
			return err
		}
		if conflict != nil {
			if cerr := conflict(ctx); cerr != nil {
				return cerr
			}
		}
		if attempt == maxAttempts {
			return err
		}
		if err := s.catchUp(ctx, collection); err != nil {
			return err
		}
		next, err := s.ids.Next(ctx, collection)
		if err != nil {
			return err
		}
		s.log.Warnf("%s id %s already taken, retrying as %s", collection, *id, next)
		*id = next
	}
}

func (s *Service) catchUp(ctx context.Context, collection string) error {
	max, err := s.store.MaxID(ctx, collection)
	if err != nil {
		return err
	}
	return s.ids.Observe(ctx, collection, max)
}
