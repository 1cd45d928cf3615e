package postgres

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

// fakeDB answers queries from a script keyed by a fragment of the SQL text
type fakeDB struct {
	rows     map[string][]any
	noRows   map[string]bool
	affected map[string]int64
	execs    []string
	commits  int
}

func newFakeDB() *fakeDB {
	return &fakeDB{rows: map[string][]any{}, noRows: map[string]bool{}, affected: map[string]int64{}}
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: want %d destinations, got %d", len(r.values), len(dest))
	}
	for i, d := range dest {
		v := reflect.ValueOf(d).Elem()
		if r.values[i] == nil {
			v.Set(reflect.Zero(v.Type()))
			continue
		}
		v.Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

type fakeTag int64

func (t fakeTag) RowsAffected() int64 { return int64(t) }

func lookup[V any](script map[string]V, sql string) (V, bool) {
	for fragment, v := range script {
		if strings.Contains(sql, fragment) {
			return v, true
		}
	}
	var zero V
	return zero, false
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) Row {
	if _, ok := lookup(f.noRows, sql); ok {
		return fakeRow{err: ErrNoRows}
	}
	if values, ok := lookup(f.rows, sql); ok {
		return fakeRow{values: values}
	}
	return fakeRow{err: fmt.Errorf("unexpected query: %s", sql)}
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return nil, fmt.Errorf("unexpected query: %s", sql)
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	f.execs = append(f.execs, sql)
	if n, ok := lookup(f.affected, sql); ok {
		return fakeTag(n), nil
	}
	return fakeTag(1), nil
}

func (f *fakeDB) Begin(ctx context.Context) (Tx, error) { return &fakeTx{db: f}, nil }
func (f *fakeDB) Ping(ctx context.Context) error        { return nil }
func (f *fakeDB) Close()                                {}

type fakeTx struct {
	db *fakeDB
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return t.db.Query(ctx, sql, args...)
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return t.db.QueryRow(ctx, sql, args...)
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return t.db.Exec(ctx, sql, args...)
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.db.commits++
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error { return nil }
