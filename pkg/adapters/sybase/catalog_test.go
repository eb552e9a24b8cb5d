package sybase

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruslano69/tdtp-sybase/pkg/core/query"
	"github.com/ruslano69/tdtp-sybase/pkg/querylog"
)

func expectCatalog(mock sqlmock.Sqlmock, table string, columns ...string) {
	rows := sqlmock.NewRows([]string{"name", "type"})
	for i := 0; i+1 < len(columns); i += 2 {
		rows.AddRow(columns[i], columns[i+1])
	}
	mock.ExpectQuery(q("object_name(a.id) = '" + table + "'")).WillReturnRows(rows)
}

func TestCatalogQuery(t *testing.T) {
	plain := catalogQuery(ParseTableRef("users as u"))
	assert.Contains(t, plain, "FROM syscolumns a, systypes b, systypes s, systypes st")
	assert.Contains(t, plain, "st.name NOT IN ('timestamp', 'sysname', 'longsysname', 'nchar', 'nvarchar')")
	assert.Contains(t, plain, "st.usertype < 100")
	assert.Contains(t, plain, "object_name(a.id) = 'users'")

	qualified := catalogQuery(ParseTableRef("Sales..Orders"))
	assert.Contains(t, qualified, "FROM Sales..syscolumns a, Sales..systypes b, Sales..systypes s, Sales..systypes st")
	assert.Contains(t, qualified, "object_name(a.id, db_id('Sales')) = 'Orders'")

	escaped := catalogQuery(ParseTableRef("o'neil"))
	assert.Contains(t, escaped, "object_name(a.id) = 'o''neil'")
}

func TestCatalogResolver_FromAndJoins(t *testing.T) {
	db, mock := newMockDB(t)

	expectCatalog(mock, "users", "id", "int", "name", "varchar")
	mock.ExpectQuery(q("object_name(a.id, db_id('sales')) = 'orders'")).
		WillReturnRows(sqlmock.NewRows([]string{"name", "type"}).
			AddRow("id", "numeric").
			AddRow("total", "money"))

	mem := querylog.NewMemoryAppender(0)
	resolver := NewCatalogResolver(db, zerolog.Nop(), querylog.NewLogger(querylog.LoggerConfig{}, mem))

	b := query.Table("users as u").Join("sales..orders as o", "o.user_id", "=", "u.id")
	catalog, err := resolver.Resolve(context.Background(), b)
	require.NoError(t, err)

	for key, want := range map[string]string{
		"name":                "varchar",
		"u.name":              "varchar",
		"users.name":          "varchar",
		"total":               "money",
		"o.total":             "money",
		"orders.total":        "money",
		"sales..orders.total": "money",
		"u.id":                "int",
		"o.id":                "numeric",
	} {
		got, err := catalog.Lookup(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, got, key)
	}

	// bare "id" belongs to the table resolved last
	got, _ := catalog.Lookup("id")
	assert.Equal(t, "numeric", got)

	entries := mem.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, querylog.KindCatalog, entries[0].Kind)
	assert.Equal(t, "sales..orders", entries[1].Metadata["table"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogResolver_QueryError(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("permission denied on syscolumns")

	mock.ExpectQuery(q("object_name(a.id) = 'users'")).WillReturnError(boom)

	_, err := NewCatalogResolver(db, zerolog.Nop(), nil).Resolve(context.Background(), query.Table("users"))
	assert.ErrorIs(t, err, boom)
}

func TestCatalogResolver_ResolveTwiceSameMapping(t *testing.T) {
	db, mock := newMockDB(t)

	for i := 0; i < 2; i++ {
		expectCatalog(mock, "users", "id", "int", "name", "varchar")
		mock.ExpectQuery(q("object_name(a.id) = 'orders'")).
			WillReturnRows(sqlmock.NewRows([]string{"name", "type"}).
				AddRow("id", "numeric").
				AddRow("total", "money"))
	}

	resolver := NewCatalogResolver(db, zerolog.Nop(), nil)
	b := query.Table("users as u").Join("orders as o", "o.user_id", "=", "u.id").Where("o.total", ">", 10)

	first, err := resolver.Resolve(context.Background(), b)
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}
