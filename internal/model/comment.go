package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Comment is flat CRUD with no nested relations. PostID references an external
// "post" concept that this service never stores, so there is no foreign key.
// UserID is a best-effort association — the referenced user may not exist, and
// that is not an error here.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Body      string    `json:"body"`
	UserID    *int64    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewComment is the payload for creating a comment. An absent userId is stored
// as NULL.
type NewComment struct {
	PostID *int64 `json:"postId"` // pointer so validation can tell 0 from absent
	Name   string `json:"name"`
	Email  string `json:"email"`
	Body   string `json:"body"`
	UserID *int64 `json:"userId"`
}

// OptionalInt64 is a JSON field that distinguishes three states a plain
// pointer cannot: absent from the payload, explicitly null, and a value.
//
// WHY DOES THIS EXIST?
// Comment updates treat `"userId": null` (clear the association) differently
// from omitting userId entirely (keep it). Every other field in the API treats
// null and absent identically, so this type is used for exactly one field.
type OptionalInt64 struct {
	Set   bool  // the key appeared in the payload
	Valid bool  // the value was non-null
	Value int64 // meaningful only when Valid
}

var jsonNull = []byte("null")

// UnmarshalJSON is only invoked by encoding/json when the key is present, so
// reaching this method at all means Set=true.
func (o *OptionalInt64) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}
