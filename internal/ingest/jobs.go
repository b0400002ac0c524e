package ingest

import (
	"github.com/forumdb/forumdb/internal/models"
	"github.com/forumdb/forumdb/internal/store"
	"go.mongodb.org/mongo-driver/bson"
)

// Job loads one bulk resource into one collection.
type Job struct {
	Resource   string // resource name, e.g. "Posts" for Posts.json
	Collection string
	// ExtractTerms attaches derived terms to every document before insertion.
	ExtractTerms bool
	// Constraints are created before insertion so the bulk insert enforces them.
	Constraints []store.Index
	// Indexes are built only once insertion has completed.
	Indexes []store.Index
}

// ResetCollections are dropped at the start of every run.
var ResetCollections = []string{models.PostsCollection, models.TagsCollection, models.VotesCollection}

var uniqueID = store.Index{Field: "Id", Unique: true}

// OneUpVotePerUser rejects a second up-vote by the same known user on the
// same post, even when two sessions race past the authoring check.
var OneUpVotePerUser = store.Index{
	Field:  "UserId",
	With:   []string{"PostId"},
	Unique: true,
	Partial: bson.M{
		"UserId":     bson.M{"$exists": true},
		"VoteTypeId": models.UpVote,
	},
}

func PostsJob() Job {
	return Job{
		Resource:     "Posts",
		Collection:   models.PostsCollection,
		ExtractTerms: true,
		Constraints:  []store.Index{uniqueID},
		Indexes:      []store.Index{{Field: "terms", CaseInsensitive: true}},
	}
}

func TagsJob() Job {
	return Job{
		Resource:   "Tags",
		Collection: models.TagsCollection,
		Constraints: []store.Index{
			uniqueID,
			{Field: "TagName", Unique: true, CaseInsensitive: true},
		},
	}
}

func VotesJob() Job {
	return Job{
		Resource:    "Votes",
		Collection:  models.VotesCollection,
		Constraints: []store.Index{uniqueID, OneUpVotePerUser},
	}
}

// DefaultJobs loads posts, tags and votes.
func DefaultJobs() []Job {
	return []Job{PostsJob(), TagsJob(), VotesJob()}
}

// Resources lists the resource names of jobs, for locating them up front.
func Resources(jobs []Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.Resource
	}
	return out
}
