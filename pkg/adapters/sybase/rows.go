package sybase

import (
	"database/sql"
	"strings"

	"github.com/ruslano69/tdtp-sybase/pkg/adapters"
)

// textTypes - типы, которые драйверы могут вернуть как []byte, но по смыслу это текст
var textTypes = map[string]bool{
	"CHAR": true, "VARCHAR": true, "NCHAR": true, "NVARCHAR": true,
	"UNICHAR": true, "UNIVARCHAR": true, "TEXT": true, "UNITEXT": true,
	"SYSNAME": true, "LONGSYSNAME": true,
	"DECIMAL": true, "NUMERIC": true, "MONEY": true, "SMALLMONEY": true,
}

// fetchAll reads every row of every result set.
// Rows of later result sets are appended after the rows of earlier ones.
func fetchAll(rows *sql.Rows) ([]adapters.Row, error) {
	result := []adapters.Row{}

	for {
		columns, err := rows.Columns()
		if err != nil {
			return nil, err
		}

		dbTypes := make([]string, len(columns))
		if types, err := rows.ColumnTypes(); err == nil {
			for i, ct := range types {
				dbTypes[i] = strings.ToUpper(ct.DatabaseTypeName())
			}
		}

		for rows.Next() {
			values := make([]any, len(columns))
			ptrs := make([]any, len(columns))
			for i := range values {
				ptrs[i] = &values[i]
			}

			if err := rows.Scan(ptrs...); err != nil {
				return nil, err
			}

			row := make(adapters.Row, len(columns))
			for i, col := range columns {
				row[col] = normalizeValue(values[i], dbTypes[i])
			}
			result = append(result, row)
		}

		if err := rows.Err(); err != nil {
			return nil, err
		}

		if !rows.NextResultSet() {
			break
		}
	}

	return result, nil
}

func normalizeValue(v any, dbType string) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	if textTypes[dbType] {
		return string(b)
	}
	return b
}
