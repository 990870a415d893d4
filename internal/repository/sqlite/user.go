package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/user-directory/internal/apperror"
	"github.com/sakif/user-directory/internal/model"
	"github.com/sakif/user-directory/internal/repository"
)

// Compile-time check that *DB satisfies the repository contract.
var _ repository.UserRepository = (*DB)(nil)

// userSelect hydrates a user together with its 1:1 relations in one query.
// LEFT JOINs keep users without an address/geo/company in the result set —
// the relation columns come back NULL and scanUserRow maps them to nil.
const userSelect = `
	SELECT u.id, u.name, u.username, u.email, u.phone, u.website,
	       u.created_at, u.updated_at,
	       a.id, a.street, a.suite, a.city, a.zipcode,
	       g.id, g.lat, g.lng,
	       c.id, c.name, c.catch_phrase, c.bs
	FROM users u
	LEFT JOIN addresses a ON a.user_id = u.id
	LEFT JOIN geos g      ON g.address_id = a.id
	LEFT JOIN companies c ON c.user_id = u.id`

var userSearchColumns = []string{"u.name", "u.username", "u.email"}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanUserRow reads one joined row. The relation columns are nullable because
// of the LEFT JOINs — a NULL relation id means the user doesn't own that row.
// Scanning nullable text into **string (e.g. &street) lets database/sql
// handle NULL without sql.NullString noise.
func scanUserRow(row scanner) (*model.User, error) {
	var (
		u model.User

		addrID                       sql.NullInt64
		street, suite, city, zipcode *string
		geoID                        sql.NullInt64
		lat, lng                     *string
		compID                       sql.NullInt64
		compName, catchPhrase, bs    *string
	)

	err := row.Scan(
		&u.ID, &u.Name, &u.Username, &u.Email, &u.Phone, &u.Website,
		&u.CreatedAt, &u.UpdatedAt,
		&addrID, &street, &suite, &city, &zipcode,
		&geoID, &lat, &lng,
		&compID, &compName, &catchPhrase, &bs,
	)
	if err != nil {
		return nil, err
	}

	if addrID.Valid {
		u.Address = &model.Address{
			ID:      addrID.Int64,
			Street:  strOrEmpty(street),
			Suite:   suite,
			City:    strOrEmpty(city),
			Zipcode: zipcode,
			UserID:  u.ID,
		}
		if geoID.Valid {
			u.Address.Geo = &model.Geo{
				ID:        geoID.Int64,
				Lat:       strOrEmpty(lat),
				Lng:       strOrEmpty(lng),
				AddressID: addrID.Int64,
			}
		}
	}
	if compID.Valid {
		u.Company = &model.Company{
			ID:          compID.Int64,
			Name:        strOrEmpty(compName),
			CatchPhrase: catchPhrase,
			BS:          bs,
			UserID:      u.ID,
		}
	}

	return &u, nil
}

// List returns one page of users, newest first, plus the total count of the
// filtered set before LIMIT/OFFSET. Ties on created_at are broken by id
// descending so the ordering is deterministic.
func (db *DB) List(ctx context.Context, q repository.UserQuery) ([]model.User, int, error) {
	whereSQL := ""
	var whereArgs []any
	if q.Search != "" {
		cond, condArgs := searchWhere(userSearchColumns, q.Search)
		whereSQL = " WHERE " + cond
		whereArgs = condArgs
	}

	var total int
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users u"+whereSQL, whereArgs...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting users: %w", err)
	}

	offset := (q.Page - 1) * q.Limit
	args := append(whereArgs, q.Limit, offset)
	rows, err := db.conn.QueryContext(ctx,
		userSelect+whereSQL+" ORDER BY u.created_at DESC, u.id DESC LIMIT ? OFFSET ?",
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, q.Limit)
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, total, nil
}

// GetByID retrieves a single user with address, geo, and company hydrated.
func (db *DB) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUserRow(db.conn.QueryRowContext(ctx, userSelect+" WHERE u.id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("User", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return u, nil
}

// Create inserts the user and any nested address/geo/company in a single
// transaction. Absent nested objects are simply not created — no placeholder
// rows.
func (db *DB) Create(ctx context.Context, data model.NewUser) (*model.User, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (name, username, email, phone, website, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		data.Name, data.Username, data.Email, data.Phone, data.Website, now, now,
	)
	if err != nil {
		return nil, mapError("creating user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading new user id: %w", err)
	}

	if data.Address != nil {
		ares, err := tx.ExecContext(ctx,
			`INSERT INTO addresses (street, suite, city, zipcode, user_id)
			 VALUES (?, ?, ?, ?, ?)`,
			data.Address.Street, data.Address.Suite, data.Address.City, data.Address.Zipcode, id,
		)
		if err != nil {
			return nil, mapError("creating address", err)
		}
		if data.Address.Geo != nil {
			addrID, err := ares.LastInsertId()
			if err != nil {
				return nil, fmt.Errorf("sqlite: reading new address id: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO geos (lat, lng, address_id) VALUES (?, ?, ?)`,
				data.Address.Geo.Lat, data.Address.Geo.Lng, addrID,
			); err != nil {
				return nil, mapError("creating geo", err)
			}
		}
	}

	if data.Company != nil {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO companies (name, catch_phrase, bs, user_id) VALUES (?, ?, ?, ?)`,
			data.Company.Name, data.Company.CatchPhrase, data.Company.BS, id,
		); err != nil {
			return nil, mapError("creating company", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing user create: %w", err)
	}

	return db.GetByID(ctx, id)
}

// Update applies a resolved change set in one transaction: the user's scalar
// fields, then the address instruction (with geo nested inside it), then the
// company instruction.
//
// The user row is always touched, even for an empty change set, so updated_at
// refreshes and RowsAffected doubles as a liveness check: a concurrent delete
// between the service's existence check and this write shows up as zero rows
// affected and maps to the same NotFound the check would have produced.
func (db *DB) Update(ctx context.Context, id int64, cs model.UserChangeSet) (*model.User, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var set assignments
	set.addString("name", cs.Name)
	set.addString("username", cs.Username)
	set.addString("email", cs.Email)
	set.addString("phone", cs.Phone)
	set.addString("website", cs.Website)
	set.add("updated_at", time.Now().UTC())

	args := append(set.args, id)
	res, err := tx.ExecContext(ctx,
		"UPDATE users SET "+set.clause()+" WHERE id = ?", args...,
	)
	if err != nil {
		return nil, mapError("updating user", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return nil, apperror.NotFound("User", id)
	}

	if err := applyAddressChange(ctx, tx, id, cs.Address); err != nil {
		return nil, err
	}
	if err := applyCompanyChange(ctx, tx, id, cs.Company); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing user update: %w", err)
	}

	return db.GetByID(ctx, id)
}

func applyAddressChange(ctx context.Context, tx *sql.Tx, userID int64, ch model.AddressChange) error {
	switch ch.Op {
	case model.RelationUnchanged:
		return nil

	case model.RelationCreate:
		res, err := tx.ExecContext(ctx,
			`INSERT INTO addresses (street, suite, city, zipcode, user_id)
			 VALUES (?, ?, ?, ?, ?)`,
			strOrEmpty(ch.Street), ch.Suite, strOrEmpty(ch.City), ch.Zipcode, userID,
		)
		if err != nil {
			return mapError("creating address", err)
		}
		if ch.Geo.Op == model.RelationUnchanged {
			return nil
		}
		addrID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: reading new address id: %w", err)
		}
		return insertGeo(ctx, tx, addrID, ch.Geo)

	case model.RelationUpdate:
		var addrID int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM addresses WHERE user_id = ?`, userID,
		).Scan(&addrID)
		if err == sql.ErrNoRows {
			// The row vanished since the change set was derived; an
			// upsert creates instead of failing.
			ch.Op = model.RelationCreate
			if ch.Geo.Op == model.RelationUpdate {
				ch.Geo.Op = model.RelationCreate
			}
			return applyAddressChange(ctx, tx, userID, ch)
		}
		if err != nil {
			return fmt.Errorf("sqlite: locating address for user %d: %w", userID, err)
		}

		var set assignments
		set.addString("street", ch.Street)
		set.addString("suite", ch.Suite)
		set.addString("city", ch.City)
		set.addString("zipcode", ch.Zipcode)
		if !set.empty() {
			args := append(set.args, addrID)
			if _, err := tx.ExecContext(ctx,
				"UPDATE addresses SET "+set.clause()+" WHERE id = ?", args...,
			); err != nil {
				return mapError("updating address", err)
			}
		}

		switch ch.Geo.Op {
		case model.RelationUnchanged:
			return nil
		case model.RelationCreate:
			return insertGeo(ctx, tx, addrID, ch.Geo)
		default: // RelationUpdate
			var gset assignments
			gset.addString("lat", ch.Geo.Lat)
			gset.addString("lng", ch.Geo.Lng)
			if gset.empty() {
				return nil
			}
			gargs := append(gset.args, addrID)
			if _, err := tx.ExecContext(ctx,
				"UPDATE geos SET "+gset.clause()+" WHERE address_id = ?", gargs...,
			); err != nil {
				return mapError("updating geo", err)
			}
			return nil
		}
	}
	return nil
}

func insertGeo(ctx context.Context, tx *sql.Tx, addrID int64, ch model.GeoChange) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO geos (lat, lng, address_id) VALUES (?, ?, ?)`,
		strOrEmpty(ch.Lat), strOrEmpty(ch.Lng), addrID,
	); err != nil {
		return mapError("creating geo", err)
	}
	return nil
}

func applyCompanyChange(ctx context.Context, tx *sql.Tx, userID int64, ch model.CompanyChange) error {
	switch ch.Op {
	case model.RelationUnchanged:
		return nil

	case model.RelationCreate:
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO companies (name, catch_phrase, bs, user_id) VALUES (?, ?, ?, ?)`,
			strOrEmpty(ch.Name), ch.CatchPhrase, ch.BS, userID,
		); err != nil {
			return mapError("creating company", err)
		}
		return nil

	case model.RelationUpdate:
		var set assignments
		set.addString("name", ch.Name)
		set.addString("catch_phrase", ch.CatchPhrase)
		set.addString("bs", ch.BS)
		if set.empty() {
			return nil
		}
		args := append(set.args, userID)
		res, err := tx.ExecContext(ctx,
			"UPDATE companies SET "+set.clause()+" WHERE user_id = ?", args...,
		)
		if err != nil {
			return mapError("updating company", err)
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			// Same vanished-row fallback as addresses.
			ch.Op = model.RelationCreate
			return applyCompanyChange(ctx, tx, userID, ch)
		}
		return nil
	}
	return nil
}

// Delete removes the user; addresses, geos, and companies go with it via
// ON DELETE CASCADE.
func (db *DB) Delete(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("User", id)
	}
	return nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
