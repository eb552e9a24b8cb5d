package sybase

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func q(sqlText string) string {
	return regexp.QuoteMeta(sqlText)
}

func TestWindow_Bounds(t *testing.T) {
	limit := int64(10)

	lo, hi := Window{Offset: 20, Limit: &limit}.Bounds()
	assert.Equal(t, "21", lo)
	assert.Equal(t, "30", hi)

	lo, hi = Window{Offset: 5}.Bounds()
	assert.Equal(t, "6", lo)
	assert.Equal(t, UnboundedUpper, hi)

	lo, hi = Window{Offset: math.MaxInt64, Limit: &limit}.Bounds()
	assert.Equal(t, "9223372036854775808", lo)
	assert.Equal(t, "9223372036854775817", hi)
}

func TestStageSQL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"select * from users", "select * into #tmpPaginate from users"},
		{"SELECT id FROM users WHERE a = 1", "SELECT id into #tmpPaginate FROM users WHERE a = 1"},
		{
			"select 'x from y' as s, (select max(id) from t) as m from users",
			"select 'x from y' as s, (select max(id) from t) as m into #tmpPaginate from users",
		},
		{"select a\nfrom users", "select a into #tmpPaginate\nfrom users"},
	}

	for _, tt := range tests {
		got, err := stageSQL(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := stageSQL("select 1")
	assert.Error(t, err)

	_, err = stageSQL("select (a from b)")
	assert.Error(t, err)
}

func expectIdentity(mock sqlmock.Sqlmock, table string, columns ...string) {
	rows := sqlmock.NewRows([]string{"column"})
	for _, c := range columns {
		rows.AddRow(c)
	}
	mock.ExpectQuery(q("status & 128 = 128 AND object_name(id) = '" + table + "'")).WillReturnRows(rows)
}

func TestPaginator_IdentityColumn(t *testing.T) {
	db, mock := newMockDB(t)
	limit := int64(10)

	expectIdentity(mock, "users", "id")
	mock.ExpectExec(q("select * into #tmpPaginate from users where id > 5")).
		WillReturnResult(sqlmock.NewResult(0, 100))
	mock.ExpectExec(q("SELECT id+0 AS id, idTmp=identity(18) INTO #tmpTable FROM #tmpPaginate")).
		WillReturnResult(sqlmock.NewResult(0, 100))
	mock.ExpectQuery(q("SELECT #tmpPaginate.*, #tmpTable.idTmp FROM #tmpTable INNER JOIN #tmpPaginate ON #tmpPaginate.id = #tmpTable.id WHERE #tmpTable.idTmp BETWEEN 21 AND 30 ORDER BY #tmpTable.idTmp ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "idTmp"}).
			AddRow(26, "u26", 21).
			AddRow(27, "u27", 22))
	mock.ExpectExec(q("DROP TABLE #tmpTable")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("DROP TABLE #tmpPaginate")).WillReturnResult(sqlmock.NewResult(0, 0))

	p := NewPaginator(db, zerolog.Nop(), nil)
	rows, err := p.Run(context.Background(), "select * from users where id > 5", "users", Window{Offset: 20, Limit: &limit})
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "u26", rows[0]["name"])
	assert.Equal(t, pageFetched, p.state)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = p.Run(context.Background(), "select * from users", "users", Window{Offset: 1})
	assert.Error(t, err, "paginator is single use")
}

func TestPaginator_ImplicitAlias(t *testing.T) {
	db, mock := newMockDB(t)
	limit := int64(5)

	expectIdentity(mock, "users", "id")
	mock.ExpectExec(q("select u.* into #tmpPaginate from users u")).
		WillReturnResult(sqlmock.NewResult(0, 20))
	mock.ExpectExec(q("SELECT id+0 AS id, idTmp=identity(18) INTO #tmpTable FROM #tmpPaginate")).
		WillReturnResult(sqlmock.NewResult(0, 20))
	mock.ExpectQuery(q("WHERE #tmpTable.idTmp BETWEEN 11 AND 15")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "idTmp"}).AddRow(11, 11))
	mock.ExpectExec(q("DROP TABLE #tmpTable")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("DROP TABLE #tmpPaginate")).WillReturnResult(sqlmock.NewResult(0, 0))

	p := NewPaginator(db, zerolog.Nop(), nil)
	rows, err := p.Run(context.Background(), "select u.* from users u", "users u", Window{Offset: 10, Limit: &limit})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "users", p.table.Table)
	assert.Equal(t, []string{"id"}, p.keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaginationTable(t *testing.T) {
	tests := []struct {
		from  string
		table string
		kind  RefKind
	}{
		{"users", "users", RefSimple},
		{"users u", "users", RefSimple},
		{"users as u", "users", RefSimple},
		{"  sales..orders o", "orders", RefQualified},
	}

	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			ref := paginationTable(tt.from)
			assert.Equal(t, tt.table, ref.Table)
			assert.Equal(t, tt.kind, ref.Kind)
		})
	}

	assert.Equal(t, RefUnparsed, paginationTable("   ").Kind)
}

func TestPaginator_PrimaryKeyFallback(t *testing.T) {
	db, mock := newMockDB(t)

	expectIdentity(mock, "order_lines")
	mock.ExpectQuery(q("SELECT index_col('order_lines', i.indid, c.colid) AS primary_key FROM sysindexes i, syscolumns c")).
		WillReturnRows(sqlmock.NewRows([]string{"primary_key"}).
			AddRow("order_id").
			AddRow("line_no").
			AddRow("order_id").
			AddRow(nil))
	mock.ExpectExec(q("select * into #tmpPaginate from order_lines")).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(q("SELECT order_id+0 AS order_id, line_no+0 AS line_no, idTmp=identity(18) INTO #tmpTable FROM #tmpPaginate")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(q("ON #tmpPaginate.order_id = #tmpTable.order_id AND #tmpPaginate.line_no = #tmpTable.line_no WHERE #tmpTable.idTmp BETWEEN 2 AND " + UnboundedUpper)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "line_no", "idTmp"}).AddRow(1, 2, 2))
	mock.ExpectExec(q("DROP TABLE #tmpTable")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("DROP TABLE #tmpPaginate")).WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := NewPaginator(db, zerolog.Nop(), nil).
		Run(context.Background(), "select * from order_lines", "order_lines", Window{Offset: 1})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaginator_NoDeterministicOrder(t *testing.T) {
	db, mock := newMockDB(t)

	expectIdentity(mock, "logs")
	mock.ExpectQuery(q("index_col('logs'")).WillReturnRows(sqlmock.NewRows([]string{"primary_key"}))

	_, err := NewPaginator(db, zerolog.Nop(), nil).
		Run(context.Background(), "select * from logs", "logs", Window{Offset: 10})

	require.Error(t, err)
	assert.True(t, IsNoDeterministicOrder(err))
	var nd *NoDeterministicOrderError
	require.ErrorAs(t, err, &nd)
	assert.Equal(t, "logs", nd.Table)
	assert.NoError(t, mock.ExpectationsWereMet(), "nothing is staged without keys")
}

func TestPaginator_CleanupAfterFailedStep(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("identity(18) not allowed")

	expectIdentity(mock, "users", "id")
	mock.ExpectExec(q("into #tmpPaginate")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INTO #tmpTable")).WillReturnError(boom)
	mock.ExpectExec(q("DROP TABLE #tmpPaginate")).WillReturnResult(sqlmock.NewResult(0, 0))

	p := NewPaginator(db, zerolog.Nop(), nil)
	_, err := p.Run(context.Background(), "select * from users", "users", Window{Offset: 1})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, pageFailed, p.state)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaginator_QualifiedTable(t *testing.T) {
	db, mock := newMockDB(t)
	limit := int64(5)

	mock.ExpectQuery(q("FROM sales..syscolumns AS b INNER JOIN sales..sysobjects AS a ON a.id = b.id WHERE b.status & 128 = 128 AND a.name = 'orders'")).
		WillReturnRows(sqlmock.NewRows([]string{"column"}).AddRow("order_no"))
	mock.ExpectExec(q("select o.* into #tmpPaginate from sales..orders as o")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("SELECT order_no+0 AS order_no")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("BETWEEN 6 AND 10")).WillReturnRows(sqlmock.NewRows([]string{"order_no", "idTmp"}))
	mock.ExpectExec(q("DROP TABLE #tmpTable")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("DROP TABLE #tmpPaginate")).WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := NewPaginator(db, zerolog.Nop(), nil).
		Run(context.Background(), "select o.* from sales..orders as o", "sales..orders as o", Window{Offset: 5, Limit: &limit})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrimarySQL(t *testing.T) {
	assert.Equal(t,
		"SELECT index_col('sales..orders', i.indid, c.colid) AS primary_key FROM sales..sysindexes i, sales..syscolumns c WHERE i.id = c.id AND c.colid <= i.keycnt AND i.status & 2048 = 2048 AND i.id = object_id('sales..orders') ORDER BY c.colid",
		primarySQL(ParseTableRef("sales..orders as o")))
}
