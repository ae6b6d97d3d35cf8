package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/phrazzld/pagepace/internal/domain"
)

// encodeIDs renders a membership list as a JSONB array. A nil set is stored
// as [] so the column never holds null.
func encodeIDs(ids domain.IDSet) (string, error) {
	if ids == nil {
		ids = domain.IDSet{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to encode id list: %w", err)
	}
	return string(raw), nil
}

func decodeIDs(raw []byte) (domain.IDSet, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var ids domain.IDSet
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("failed to decode id list: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return ids, nil
}

// dateArg converts a calendar date to the value bound to a DATE parameter.
func dateArg(d civil.Date) time.Time {
	return d.In(time.UTC)
}

// dateOf reads a DATE column scanned as midnight UTC.
func dateOf(t time.Time) civil.Date {
	return civil.DateOf(t.UTC())
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
