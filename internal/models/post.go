package models

import (
	"strings"
	"time"
)

// Collection names in the forum database.
const (
	PostsCollection = "posts"
	TagsCollection  = "tags"
	VotesCollection = "votes"
)

const (
	QuestionType = "1"
	AnswerType   = "2"

	// DateLayout matches the CreationDate format of the bulk corpus.
	DateLayout     = "2006-01-02T15:04:05.000"
	contentLicense = "CC BY-SA 2.5"
)

// Question is a post with PostTypeId "1".
type Question struct {
	ID               string   `bson:"Id" json:"Id"`
	PostTypeID       string   `bson:"PostTypeId" json:"PostTypeId"`
	CreationDate     string   `bson:"CreationDate" json:"CreationDate"`
	LastActivityDate string   `bson:"LastActivityDate" json:"LastActivityDate"`
	OwnerUserID      string   `bson:"OwnerUserId,omitempty" json:"OwnerUserId,omitempty"` // empty for anonymous authors
	Score            int      `bson:"Score" json:"Score"`
	ViewCount        int      `bson:"ViewCount" json:"ViewCount"`
	Body             string   `bson:"Body" json:"Body"`
	Title            string   `bson:"Title" json:"Title"`
	Tags             string   `bson:"Tags,omitempty" json:"Tags,omitempty"`
	AnswerCount      int      `bson:"AnswerCount" json:"AnswerCount"`
	CommentCount     int      `bson:"CommentCount" json:"CommentCount"`
	FavoriteCount    int      `bson:"FavoriteCount" json:"FavoriteCount"`
	ContentLicense   string   `bson:"ContentLicense" json:"ContentLicense"`
	Terms            []string `bson:"terms,omitempty" json:"terms,omitempty"`
}

// NewQuestion builds a question with zeroed counters. Tags are serialized as
// "<a><b>" in the given order; terms are left for the caller to attach.
func NewQuestion(id, owner, title, body string, tags []string, created time.Time) *Question {
	date := created.Format(DateLayout)
	return &Question{
		ID:               id,
		PostTypeID:       QuestionType,
		CreationDate:     date,
		LastActivityDate: date,
		OwnerUserID:      owner,
		Body:             body,
		Title:            title,
		Tags:             JoinTags(tags),
		ContentLicense:   contentLicense,
	}
}

// Field implements terms.Fields.
func (q *Question) Field(name string) (string, bool) {
	switch name {
	case "Title":
		return q.Title, true
	case "Body":
		return q.Body, true
	}
	return "", false
}

// Answer is a post with PostTypeId "2" pointing at its question via ParentId.
type Answer struct {
	ID               string   `bson:"Id" json:"Id"`
	PostTypeID       string   `bson:"PostTypeId" json:"PostTypeId"`
	OwnerUserID      string   `bson:"OwnerUserId,omitempty" json:"OwnerUserId,omitempty"`
	ParentID         string   `bson:"ParentId" json:"ParentId"`
	CreationDate     string   `bson:"CreationDate" json:"CreationDate"`
	LastActivityDate string   `bson:"LastActivityDate" json:"LastActivityDate"`
	Body             string   `bson:"Body" json:"Body"`
	Score            int      `bson:"Score" json:"Score"`
	CommentCount     int      `bson:"CommentCount" json:"CommentCount"`
	ContentLicense   string   `bson:"ContentLicense" json:"ContentLicense"`
	Terms            []string `bson:"terms,omitempty" json:"terms,omitempty"`
}

func NewAnswer(id, owner, parentID, body string, created time.Time) *Answer {
	date := created.Format(DateLayout)
	return &Answer{
		ID:               id,
		PostTypeID:       AnswerType,
		OwnerUserID:      owner,
		ParentID:         parentID,
		CreationDate:     date,
		LastActivityDate: date,
		Body:             body,
		ContentLicense:   contentLicense,
	}
}

// Field implements terms.Fields. Answers have no title.
func (a *Answer) Field(name string) (string, bool) {
	if name == "Body" {
		return a.Body, true
	}
	return "", false
}

// JoinTags renders tag names in the corpus "<a><b>" form, or "" for none.
func JoinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "<" + strings.Join(tags, "><") + ">"
}
