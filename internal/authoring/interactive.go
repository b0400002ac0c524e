package authoring

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/forumdb/forumdb/pkg/errors"
	"github.com/forumdb/forumdb/pkg/metrics"
)

// Prompter is the console the interactive flows talk to.
type Prompter interface {
	Ask(prompt string) (string, error)
	Confirm(prompt string) (bool, error)
	Say(format string, v ...any)
}

// AskQuestion collects a question from p until the user confirms it or gives
// up. It reports whether a question was committed.
func (s *Service) AskQuestion(ctx context.Context, p Prompter, author string) (bool, error) {
	id, err := s.AllocatePostID(ctx)
	if err != nil {
		return false, err
	}
	for {
		title, err := p.Ask("Enter your title: ")
		if err != nil {
			return false, err
		}
		body, err := p.Ask("Enter your body text: ")
		if err != nil {
			return false, err
		}
		tags, err := p.Ask("Enter zero or more tags, each separated by a comma: ")
		if err != nil {
			return false, err
		}
		draft := QuestionDraft{Title: title, Body: body, Tags: ParseTags(tags)}

		shown := "N/A"
		if len(draft.Tags) > 0 {
			shown = strings.Join(draft.Tags, ", ")
		}
		p.Say("Please double check your information:")
		p.Say("    Title: %s", draft.Title)
		p.Say("    Body: %s", draft.Body)
		p.Say("    Tags: %s", shown)

		ok, err := p.Confirm("Is this correct?")
		if err != nil {
			return false, err
		}
		if ok {
			q, err := s.CommitQuestion(ctx, id, author, draft)
			if err != nil {
				return false, err
			}
			p.Say("Question %s posted!", q.ID)
			return true, nil
		}
		again, err := p.Confirm("Do you still want to post a question?")
		if err != nil || !again {
			return false, err
		}
	}
}

// AskAnswer collects an answer to questionID from p.
func (s *Service) AskAnswer(ctx context.Context, p Prompter, author, questionID string) (bool, error) {
	exists, err := s.QuestionExists(ctx, questionID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, apperrors.Newf(apperrors.ErrNotFound, "question %s", questionID)
	}
	id, err := s.AllocatePostID(ctx)
	if err != nil {
		return false, err
	}
	for {
		body, err := p.Ask("Enter your body text: ")
		if err != nil {
			return false, err
		}
		ok, err := p.Confirm("Do you want to post this answer to the selected post?")
		if err != nil {
			return false, err
		}
		if ok {
			a, err := s.CommitAnswer(ctx, id, author, questionID, body)
			if err != nil {
				return false, err
			}
			p.Say("Answer %s posted!", a.ID)
			return true, nil
		}
		again, err := p.Confirm("Do you still want to post an answer?")
		if err != nil || !again {
			return false, err
		}
	}
}

// AskVote casts user's vote on postID after confirmation. A repeated vote is
// reported to the user and not committed.
func (s *Service) AskVote(ctx context.Context, p Prompter, user, postID string) (bool, error) {
	voted, err := s.HasVoted(ctx, user, postID)
	if err != nil {
		return false, err
	}
	if voted {
		metrics.AuthoringRejected.WithLabelValues("already_voted").Inc()
		p.Say("error: you've already voted on this post.")
		return false, nil
	}
	ok, err := p.Confirm("Do you want to vote on this post?")
	if err != nil || !ok {
		return false, err
	}
	if _, err := s.CommitVote(ctx, user, postID); err != nil {
		if errors.Is(err, ErrAlreadyVoted) {
			p.Say("error: you've already voted on this post.")
			return false, nil
		}
		return false, err
	}
	p.Say("Voting completed!")
	return true, nil
}
