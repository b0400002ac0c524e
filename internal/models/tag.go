package models

// Tag counts how many posts reference TagName. Tag names compare
// case-insensitively.
type Tag struct {
	ID      string `bson:"Id" json:"Id"`
	TagName string `bson:"TagName" json:"TagName"`
	Count   int    `bson:"Count" json:"Count"`
}

// NewTag builds a tag for its first attachment.
func NewTag(id, name string) *Tag {
	return &Tag{ID: id, TagName: name, Count: 1}
}
