package model

// Partial-update payloads. Every field is a pointer: nil means "the key was
// absent from the request, leave the stored value alone". There is no way to
// blank out a scalar by sending null — null decodes to the same nil pointer as
// absence, which matches the behaviour the frontend was built against.
// The single exception is CommentPatch.UserID (see OptionalInt64).

// UserPatch is the payload of PUT /api/users/{id}.
type UserPatch struct {
	Name     *string       `json:"name"`
	Username *string       `json:"username"`
	Email    *string       `json:"email"`
	Phone    *string       `json:"phone"`
	Website  *string       `json:"website"`
	Address  *AddressPatch `json:"address"`
	Company  *CompanyPatch `json:"company"`
}

// AddressPatch is the nested address payload inside UserPatch.
type AddressPatch struct {
	Street  *string   `json:"street"`
	Suite   *string   `json:"suite"`
	City    *string   `json:"city"`
	Zipcode *string   `json:"zipcode"`
	Geo     *GeoPatch `json:"geo"`
}

// GeoPatch is the nested geo payload inside AddressPatch.
type GeoPatch struct {
	Lat *string `json:"lat"`
	Lng *string `json:"lng"`
}

// CompanyPatch is the nested company payload inside UserPatch.
type CompanyPatch struct {
	Name        *string `json:"name"`
	CatchPhrase *string `json:"catchPhrase"`
	BS          *string `json:"bs"`
}

// CommentPatch is the payload of PUT /api/comments/{id}.
type CommentPatch struct {
	PostID *int64        `json:"postId"`
	Name   *string       `json:"name"`
	Email  *string       `json:"email"`
	Body   *string       `json:"body"`
	UserID OptionalInt64 `json:"userId"`
}

// RelationOp says what an update does to a 1:1 relation. The decision is made
// once, from payload presence and whether the owned row currently exists —
// never from a client-supplied flag.
type RelationOp uint8

const (
	// RelationUnchanged leaves the relation exactly as stored. This is NOT
	// "delete": omitting address from an update never discards the address.
	RelationUnchanged RelationOp = iota
	// RelationUpdate overwrites the provided fields of the existing row.
	RelationUpdate
	// RelationCreate inserts a new row owned by the parent.
	RelationCreate
)

// UserChangeSet is a UserPatch resolved against the current state of the
// user: each nested relation carries its RelationOp, so the persistence layer
// can apply the whole update without re-deriving presence rules.
type UserChangeSet struct {
	Name     *string
	Username *string
	Email    *string
	Phone    *string
	Website  *string
	Address  AddressChange
	Company  CompanyChange
}

// AddressChange is the resolved instruction for the user's address.
type AddressChange struct {
	Op      RelationOp
	Street  *string
	Suite   *string
	City    *string
	Zipcode *string
	Geo     GeoChange
}

// GeoChange is the resolved instruction for the address's geo.
type GeoChange struct {
	Op  RelationOp
	Lat *string
	Lng *string
}

// CompanyChange is the resolved instruction for the user's company.
type CompanyChange struct {
	Op          RelationOp
	Name        *string
	CatchPhrase *string
	BS          *string
}

// ChangeSet resolves the patch against the user's current relations.
//
// The rules, per relation:
//   - key absent from the payload       → Unchanged
//   - key present, owned row exists     → Update (only the provided sub-fields)
//   - key present, no owned row yet     → Create
//
// Geo follows the same rules recursively, with one extra case: when the
// address itself is being created there is nothing to update, so a provided
// geo is always a Create.
func (p UserPatch) ChangeSet(current *User) UserChangeSet {
	cs := UserChangeSet{
		Name:     p.Name,
		Username: p.Username,
		Email:    p.Email,
		Phone:    p.Phone,
		Website:  p.Website,
	}

	if p.Address != nil {
		cs.Address = AddressChange{
			Op:      RelationUpdate,
			Street:  p.Address.Street,
			Suite:   p.Address.Suite,
			City:    p.Address.City,
			Zipcode: p.Address.Zipcode,
		}
		if current.Address == nil {
			cs.Address.Op = RelationCreate
		}

		if p.Address.Geo != nil {
			cs.Address.Geo = GeoChange{
				Op:  RelationCreate,
				Lat: p.Address.Geo.Lat,
				Lng: p.Address.Geo.Lng,
			}
			if cs.Address.Op == RelationUpdate && current.Address.Geo != nil {
				cs.Address.Geo.Op = RelationUpdate
			}
		}
	}

	if p.Company != nil {
		cs.Company = CompanyChange{
			Op:          RelationUpdate,
			Name:        p.Company.Name,
			CatchPhrase: p.Company.CatchPhrase,
			BS:          p.Company.BS,
		}
		if current.Company == nil {
			cs.Company.Op = RelationCreate
		}
	}

	return cs
}
