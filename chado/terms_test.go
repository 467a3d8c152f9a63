package chado

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

// fakeRow satisfies pgx.Row with a canned cvterm_id or error.
type fakeRow struct {
	id  int
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != 1 {
		return errors.New("unexpected scan arity")
	}
	*(dest[0].(*int)) = r.id
	return nil
}

// fakeDB maps "cv|name" keys to cvterm ids and counts queries.
type fakeDB struct {
	terms   map[string]int
	queries int
}

func (db *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	db.queries++
	key := args[0].(string) + "|" + args[1].(string)
	if id, ok := db.terms[key]; ok {
		return fakeRow{id: id}
	}
	return fakeRow{err: pgx.ErrNoRows}
}

func TestTermIDResolves(t *testing.T) {
	db := &fakeDB{terms: map[string]int{"sequence|genetic_marker": 219}}
	r := NewCVTermResolver(db, "chado")

	id, err := r.TermID(context.Background(), "sequence", "genetic_marker")
	if err != nil {
		t.Fatalf("TermID: %v", err)
	}
	if id != 219 {
		t.Errorf("id = %d, want 219", id)
	}
}

func TestTermIDMemoizes(t *testing.T) {
	db := &fakeDB{terms: map[string]int{"sequence|QTL": 42}}
	r := NewCVTermResolver(db, "chado")

	for i := 0; i < 3; i++ {
		if _, err := r.TermID(context.Background(), "sequence", "QTL"); err != nil {
			t.Fatalf("TermID: %v", err)
		}
	}
	if db.queries != 1 {
		t.Errorf("queries = %d, want 1", db.queries)
	}
}

func TestTermIDNotFound(t *testing.T) {
	r := NewCVTermResolver(&fakeDB{}, "chado")

	_, err := r.TermID(context.Background(), "sequence", "no_such_term")
	if !errors.Is(err, ErrTermNotFound) {
		t.Errorf("err = %v, want ErrTermNotFound", err)
	}
}
