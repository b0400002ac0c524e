package models

import "time"

// UpVote is the only vote type users can cast. It is a string because every
// VoteTypeId in the bulk corpus is one, and mixed types would split queries
// and partial index filters on this field.
const UpVote = "2"

type Vote struct {
	ID           string `bson:"Id" json:"Id"`
	PostID       string `bson:"PostId" json:"PostId"`
	VoteTypeID   string `bson:"VoteTypeId" json:"VoteTypeId"`
	CreationDate string `bson:"CreationDate" json:"CreationDate"`
	UserID       string `bson:"UserId,omitempty" json:"UserId,omitempty"` // empty for anonymous voters
}

func NewVote(id, postID, user string, created time.Time) *Vote {
	return &Vote{
		ID:           id,
		PostID:       postID,
		VoteTypeID:   UpVote,
		CreationDate: created.Format(DateLayout),
		UserID:       user,
	}
}
