package postgres

import (
	"fmt"

	"github.com/issuefeed/backend/pkg/apperr"
)

// dbErr classifies a raw driver error as a dependency-unavailable
// application error, keeping the SQL/driver failure out of client-facing
// responses per spec.md §7.
func dbErr(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return apperr.Wrap(apperr.KindDependencyUnavailable, fmt.Sprintf(format, args...), err)
}
