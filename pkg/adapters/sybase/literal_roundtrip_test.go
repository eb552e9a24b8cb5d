package sybase

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// Литералы, собранные Inline, должны читаться SQL-движком ровно как исходные значения.
func TestInline_LiteralsRoundTrip(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	_, err = db.ExecContext(ctx, "create table samples (id integer, v text, n real)")
	require.NoError(t, err)

	values := []string{
		"O'Brien",
		"''",
		"what? why?",
		"line1\nline2",
		`C:\path\to`,
		"привет, мир",
		"--not a comment",
	}

	for i, v := range values {
		bindings, err := ClassifyRaw([]any{i, v, 1.5})
		require.NoError(t, err)

		stmt := Inline("insert into samples (id, v, n) values (?, ?, ?)", bindings)
		_, err = db.ExecContext(ctx, stmt)
		require.NoError(t, err, stmt)
	}

	for i, want := range values {
		bindings, err := ClassifyRaw([]any{i})
		require.NoError(t, err)

		var got string
		var n float64
		err = db.QueryRowContext(ctx, Inline("select v, n from samples where id = ?", bindings)).Scan(&got, &n)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, 1.5, n)
	}

	bindings, err := ClassifyRaw([]any{nil})
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, Inline("insert into samples (id, v) values (100, ?)", bindings))
	require.NoError(t, err)

	var v sql.NullString
	require.NoError(t, db.QueryRowContext(ctx, "select v from samples where id = 100").Scan(&v))
	assert.False(t, v.Valid)
}
