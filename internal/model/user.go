// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User is the root entity of the directory. It owns at most one Address and
// one Company (1:1, deleted together with the user).
//
// WHY *string FOR Phone AND Website?
// These columns are nullable in the database. A plain string can't distinguish
// "no phone number" from "empty phone number", but a nil pointer can.
// The json tags deliberately omit `omitempty` — the frontend expects to see
// `"phone": null` rather than the key disappearing.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Website   *string   `json:"website"`
	Address   *Address  `json:"address"`
	Company   *Company  `json:"company"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Address belongs to exactly one User and owns at most one Geo.
type Address struct {
	ID      int64   `json:"id"`
	Street  string  `json:"street"`
	Suite   *string `json:"suite"`
	City    string  `json:"city"`
	Zipcode *string `json:"zipcode"`
	Geo     *Geo    `json:"geo"`
	UserID  int64   `json:"userId"`
}

// Geo holds string-encoded decimal coordinates, exactly as JSONPlaceholder
// serves them. We deliberately do NOT parse them into float64 — the values are
// opaque to this service, and round-tripping through floats would change their
// textual form.
type Geo struct {
	ID        int64  `json:"id"`
	Lat       string `json:"lat"`
	Lng       string `json:"lng"`
	AddressID int64  `json:"addressId"`
}

// Company belongs to exactly one User.
type Company struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	CatchPhrase *string `json:"catchPhrase"`
	BS          *string `json:"bs"`
	UserID      int64   `json:"userId"`
}

// NewUser is the payload for creating a user. Nested objects are optional —
// when present they are created in the same transaction as the user itself,
// and when absent no placeholder rows are created.
type NewUser struct {
	Name     string      `json:"name"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Phone    *string     `json:"phone"`
	Website  *string     `json:"website"`
	Address  *NewAddress `json:"address"`
	Company  *NewCompany `json:"company"`
}

// NewAddress is the nested address payload inside NewUser.
type NewAddress struct {
	Street  string  `json:"street"`
	Suite   *string `json:"suite"`
	City    string  `json:"city"`
	Zipcode *string `json:"zipcode"`
	Geo     *NewGeo `json:"geo"`
}

// NewGeo is the nested geo payload inside NewAddress.
type NewGeo struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

// NewCompany is the nested company payload inside NewUser.
type NewCompany struct {
	Name        string  `json:"name"`
	CatchPhrase *string `json:"catchPhrase"`
	BS          *string `json:"bs"`
}
