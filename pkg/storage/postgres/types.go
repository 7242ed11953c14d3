package postgres

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// pgvector adapts domain.Vector to the pgvector wire format ("[0.1,0.2,...]")
// used by the vector extension's cosine-distance operator and the
// HNSW-style ANN index named in spec.md §6.
type pgvector []float32

func (v pgvector) String() string {
	parts := make([]string, len(v))
	for i, c := range v {
		parts[i] = strconv.FormatFloat(float64(c), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (v pgvector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return v.String(), nil
}

func (v *pgvector) Scan(src any) error {
	if src == nil {
		*v = nil
		return nil
	}
	var raw string
	switch s := src.(type) {
	case string:
		raw = s
	case []byte:
		raw = string(s)
	default:
		return fmt.Errorf("postgres: cannot scan %T into pgvector", src)
	}

	raw = strings.Trim(raw, "[]")
	if raw == "" {
		*v = pgvector{}
		return nil
	}
	fields := strings.Split(raw, ",")
	out := make(pgvector, len(fields))
	for i, f := range fields {
		val, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return fmt.Errorf("postgres: parse pgvector component %q: %w", f, err)
		}
		out[i] = float32(val)
	}
	*v = out
	return nil
}

// strArray wraps a Go string slice as a Postgres text[] literal via
// lib/pq's array helper, reused here purely for its Valuer/Scanner pair
// rather than for a full driver.
func strArray(values []string) any {
	return pq.Array(values)
}
