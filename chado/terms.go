package chado

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrTermNotFound is returned when a CV term cannot be resolved by name.
var ErrTermNotFound = errors.New("cvterm not found")

// RowQuerier is the single-row query surface the resolver needs. It is
// satisfied by *pgxpool.Pool.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CVTermResolver resolves cvterm identifiers by cv name and term name,
// memoizing results. Converters resolve each term once per run, so the
// cache never needs invalidation.
type CVTermResolver struct {
	db     RowQuerier
	schema string
	cache  map[string]int
}

// NewCVTermResolver creates a resolver over db using the given schema.
func NewCVTermResolver(db RowQuerier, schema string) *CVTermResolver {
	if schema == "" {
		schema = DefaultSchema
	}
	return &CVTermResolver{
		db:     db,
		schema: schema,
		cache:  make(map[string]int),
	}
}

// TermID returns the cvterm_id for the named term in the named cv.
func (r *CVTermResolver) TermID(ctx context.Context, cv, name string) (int, error) {
	key := cv + "|" + name
	if id, ok := r.cache[key]; ok {
		return id, nil
	}

	q := fmt.Sprintf(`
		SELECT t.cvterm_id
		FROM %s.cvterm t
		JOIN %s.cv v ON v.cv_id = t.cv_id
		WHERE v.name = $1 AND t.name = $2 AND NOT t.is_obsolete::boolean`,
		r.schema, r.schema)

	var id int
	err := r.db.QueryRow(ctx, q, cv, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s/%s", ErrTermNotFound, cv, name)
	}
	if err != nil {
		return 0, fmt.Errorf("resolving cvterm %s/%s: %w", cv, name, err)
	}

	r.cache[key] = id
	return id, nil
}
