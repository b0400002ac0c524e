// Package models holds the document shapes stored in the forum database.
package models

import "go.mongodb.org/mongo-driver/bson"

// Raw is a document as read from a bulk resource, in source field order.
type Raw bson.D

// Field implements terms.Fields. Only string values count as text.
func (r Raw) Field(name string) (string, bool) {
	for _, e := range r {
		if e.Key == name {
			s, ok := e.Value.(string)
			return s, ok
		}
	}
	return "", false
}

// With returns r with key set to value, replacing an existing entry.
func (r Raw) With(key string, value any) Raw {
	for i := range r {
		if r[i].Key == key {
			r[i].Value = value
			return r
		}
	}
	return append(r, bson.E{Key: key, Value: value})
}
