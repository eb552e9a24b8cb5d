package sybase

import (
	"database/sql"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruslano69/tdtp-sybase/pkg/core/query"
)

func usersCatalog() TypeCatalog {
	c := TypeCatalog{}
	ref := ParseTableRef("users as u")
	c.add(ref, "id", "int")
	c.add(ref, "name", "varchar")
	c.add(ref, "balance", "money")
	c.add(ref, "active", "bit")
	c.add(ref, "avatar", "varbinary")
	c.add(ref, "created_at", "datetime")
	return c
}

func TestTypeCatalog_Lookup(t *testing.T) {
	c := usersCatalog()

	for _, key := range []string{"id", "ID", "users.id", "u.id", "U.Id"} {
		typ, err := c.Lookup(key)
		require.NoError(t, err, key)
		assert.Equal(t, "int", typ)
	}

	_, err := c.Lookup("missing")
	assert.True(t, IsUnresolvedColumnType(err))
	var unresolved *UnresolvedColumnTypeError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "missing", unresolved.Column)
}

func TestIsQuoteFree(t *testing.T) {
	for _, typ := range []string{"int", "numeric", "bigint", "integer", "smallint", "tinyint",
		"decimal", "double", "float", "real", "bit", "binary", "varbinary", "timestamp", "money", "INT"} {
		assert.True(t, IsQuoteFree(typ), typ)
	}
	for _, typ := range []string{"varchar", "char", "text", "datetime", "date", "univarchar", "smallmoney"} {
		assert.False(t, IsQuoteFree(typ), typ)
	}
}

func TestCompileBindings_Order(t *testing.T) {
	b := query.Table("users as u").
		SetValue("name", "Ann").
		Where("u.id", "=", 7).
		WhereGroup("or", func(g *query.Builder) {
			g.Where("balance", ">", "10.50").
				WhereGroup("and", func(inner *query.Builder) {
					inner.WhereIn("active", true, false)
				})
		}).
		WhereNull("created_at")

	got, err := CompileBindings(b, usersCatalog())
	require.NoError(t, err)

	want := []CompiledBinding{
		{Kind: StringLiteral, Text: "Ann"},
		{Kind: NumericLiteral, Text: "7"},
		{Kind: NumericLiteral, Text: "10.50"},
		{Kind: NumericLiteral, Text: "1"},
		{Kind: NumericLiteral, Text: "0"},
	}
	assert.Equal(t, want, got)
	assert.Len(t, got, len(b.Bindings()))
}

func TestCompileBindings_InsertRows(t *testing.T) {
	b := query.Table("users").
		AddRow(query.Assignment{Column: "id", Value: 1}, query.Assignment{Column: "name", Value: "a"}).
		AddRow(query.Assignment{Column: "id", Value: nil}, query.Assignment{Column: "name", Value: "b"})

	got, err := CompileBindings(b, usersCatalog())
	require.NoError(t, err)

	literals := make([]string, len(got))
	for i, g := range got {
		literals[i] = g.Literal()
	}
	assert.Equal(t, []string{"1", "'a'", "null", "'b'"}, literals)
}

func TestCompileBindings_Errors(t *testing.T) {
	_, err := CompileBindings(query.Table("users").Where("nope", "=", 1), usersCatalog())
	assert.True(t, IsUnresolvedColumnType(err))

	_, err = CompileBindings(query.Table("users").Where("id", "=", "abc"), usersCatalog())
	assert.True(t, IsInvalidNumericLiteral(err))
	var invalid *InvalidNumericLiteralError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "int", invalid.NativeType)

	_, err = CompileBindings(query.Table("users").Where("balance", "=", math.NaN()), usersCatalog())
	assert.True(t, IsInvalidNumericLiteral(err))

	_, err = CompileBindings(query.Table("users").Where("id", "=", time.Now()), usersCatalog())
	assert.True(t, IsInvalidNumericLiteral(err))
}

func TestCompileValue(t *testing.T) {
	c := usersCatalog()
	ts := time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)
	name := "Zoe"
	var nilPtr *int

	tests := []struct {
		name    string
		column  string
		value   any
		literal string
	}{
		{"int", "id", 42, "42"},
		{"int64", "id", int64(-5), "-5"},
		{"uint", "id", uint16(9), "9"},
		{"numeric string", "id", " 12 ", "12"},
		{"plus sign", "id", "+3", "3"},
		{"float", "balance", 10.25, "10.25"},
		{"exponent", "balance", "1e3", "1e3"},
		{"json number", "balance", json.Number("99.9"), "99.9"},
		{"bool true", "active", true, "1"},
		{"bool false", "active", false, "0"},
		{"bytes", "avatar", []byte{0xde, 0xad}, "0xdead"},
		{"hex string", "avatar", "0x0A", "0x0A"},
		{"quoted string", "name", "O'Brien", "'O''Brien'"},
		{"number into text", "name", 5, "'5'"},
		{"time", "created_at", ts, "'2024-03-01 10:20:30.000'"},
		{"time pointer", "created_at", &ts, "'2024-03-01 10:20:30.000'"},
		{"nil", "id", nil, "null"},
		{"nil pointer", "id", nilPtr, "null"},
		{"pointer", "name", &name, "'Zoe'"},
		{"null string", "name", sql.NullString{}, "null"},
		{"valid null string", "name", sql.NullString{String: "x", Valid: true}, "'x'"},
		{"null int", "id", sql.NullInt64{Int64: 3, Valid: true}, "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compileValue(tt.column, tt.value, c)
			require.NoError(t, err)
			assert.Equal(t, tt.literal, got.Literal())
		})
	}
}

func TestClassifyRaw(t *testing.T) {
	got, err := ClassifyRaw([]any{1, 2.5, "x'y", nil, true, []byte("raw"), json.Number("7")})
	require.NoError(t, err)

	kinds := make([]LiteralKind, len(got))
	literals := make([]string, len(got))
	for i, g := range got {
		kinds[i] = g.Kind
		literals[i] = g.Literal()
	}

	assert.Equal(t, []LiteralKind{NumericLiteral, NumericLiteral, StringLiteral, NullLiteral, NumericLiteral, StringLiteral, NumericLiteral}, kinds)
	assert.Equal(t, []string{"1", "2.5", "'x''y'", "null", "1", "'raw'", "7"}, literals)
}

func TestClassifyRaw_TimePointer(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	var missing *time.Time

	got, err := ClassifyRaw([]any{&ts, ts, missing})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "'2024-01-02 03:04:05.000'", got[0].Literal())
	assert.Equal(t, got[1].Literal(), got[0].Literal())
	assert.Equal(t, NullLiteral, got[2].Kind)
}

func TestInline(t *testing.T) {
	num := func(s string) CompiledBinding { return CompiledBinding{Kind: NumericLiteral, Text: s} }
	str := func(s string) CompiledBinding { return CompiledBinding{Kind: StringLiteral, Text: s} }

	tests := []struct {
		name     string
		skeleton string
		bindings []CompiledBinding
		want     string
	}{
		{
			name:     "numeric and string",
			skeleton: "select * from users where id = ? and name = ?",
			bindings: []CompiledBinding{num("5"), str("O'Brien")},
			want:     "select * from users where id = 5 and name = 'O''Brien'",
		},
		{
			name:     "null",
			skeleton: "update users set name = ? where id = ?",
			bindings: []CompiledBinding{{Kind: NullLiteral}, num("1")},
			want:     "update users set name = null where id = 1",
		},
		{
			name:     "fewer bindings drop trailing placeholders",
			skeleton: "select ? , ? , ?",
			bindings: []CompiledBinding{num("1")},
			want:     "select 1 ,  , ",
		},
		{
			name:     "extra bindings ignored",
			skeleton: "select ?",
			bindings: []CompiledBinding{num("1"), num("2")},
			want:     "select 1",
		},
		{
			name:     "no bindings drops placeholders",
			skeleton: "select * from t where a = ? and b = ?",
			want:     "select * from t where a =  and b = ",
		},
		{
			name:     "brackets stripped",
			skeleton: "select [] from t[] where a = ?",
			bindings: []CompiledBinding{str("[]")},
			want:     "select  from t where a = ''",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Inline(tt.skeleton, tt.bindings))
		})
	}
}
