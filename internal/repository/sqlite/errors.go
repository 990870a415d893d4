package sqlite

import (
	"fmt"
	"strings"

	"github.com/sakif/user-directory/internal/apperror"
)

// mapError translates driver errors into domain errors where a sensible
// translation exists, and otherwise wraps them with the operation name.
//
// The SQLite driver does not export typed constraint errors, so duplicate-key
// detection is string-based. modernc.org/sqlite produces messages like:
//
//	constraint failed: UNIQUE constraint failed: users.email (2067)
//
// That is fragile in theory but stable in practice — the text comes from the
// SQLite C sources, which have kept it unchanged for many years.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return apperror.Conflict("A record with this data already exists")
	}
	return fmt.Errorf("sqlite: %s: %w", op, err)
}
