package sybase

import (
	"fmt"
	"strings"

	"github.com/ruslano69/tdtp-sybase/pkg/core/schema"
)

// typeRenderer - отображение абстрактного типа в тип ASE
type typeRenderer func(col *schema.Column) string

func fixed(name string) typeRenderer {
	return func(*schema.Column) string { return name }
}

// columnTypes - таблица типов blueprint -> ASE
var columnTypes = map[schema.ColumnType]typeRenderer{
	schema.TypeChar:   func(c *schema.Column) string { return fmt.Sprintf("nchar(%d)", c.Length) },
	schema.TypeString: func(c *schema.Column) string { return fmt.Sprintf("nvarchar(%d)", c.Length) },

	schema.TypeText:       fixed("text"),
	schema.TypeMediumText: fixed("text"),
	schema.TypeLongText:   fixed("text"),
	schema.TypeJSON:       fixed("text"),
	schema.TypeJSONB:      fixed("text"),

	schema.TypeInteger:       fixed("int"),
	schema.TypeMediumInteger: fixed("int"),
	schema.TypeBigInteger:    fixed("bigint"),
	schema.TypeTinyInteger:   fixed("tinyint"),
	schema.TypeSmallInteger:  fixed("smallint"),

	schema.TypeFloat:  fixed("float"),
	schema.TypeDouble: fixed("float"),
	schema.TypeDecimal: func(c *schema.Column) string {
		return fmt.Sprintf("decimal(%d, %d)", c.Total, c.Places)
	},
	schema.TypeNumeric: func(c *schema.Column) string {
		return fmt.Sprintf("numeric(%d, 0)", c.Total)
	},

	schema.TypeBoolean: fixed("bit"),
	schema.TypeEnum:    fixed("nvarchar(255)"),

	schema.TypeDate:        fixed("date"),
	schema.TypeDateTime:    fixed("datetime"),
	schema.TypeTimestamp:   fixed("datetime"),
	schema.TypeDateTimeTz:  fixed("datetimeoffset(0)"),
	schema.TypeTimestampTz: fixed("datetimeoffset(0)"),
	schema.TypeTime:        fixed("time"),
	schema.TypeTimeTz:      fixed("time"),

	schema.TypeBinary: fixed("varbinary(255)"),
}

// serialTypes - типы, допускающие identity
var serialTypes = map[schema.ColumnType]bool{
	schema.TypeBigInteger: true,
	schema.TypeInteger:    true,
	schema.TypeNumeric:    true,
}

// modifier добавляет фрагмент к определению колонки или ""
type modifier func(col *schema.Column) string

// columnModifiers применяются строго в этом порядке
var columnModifiers = []modifier{
	modifyIncrement,
	modifyNullable,
	modifyDefault,
}

func modifyIncrement(col *schema.Column) string {
	if col.AutoIncrement && serialTypes[col.Type] {
		return " identity primary key"
	}
	return ""
}

func modifyNullable(col *schema.Column) string {
	if col.Nullable {
		return " null"
	}
	return " not null"
}

func modifyDefault(col *schema.Column) string {
	if col.Default == nil {
		return ""
	}
	return " default " + defaultValue(col.Default)
}

// defaultValue: выражение как есть, bool как '1'/'0', остальное строкой в кавычках
func defaultValue(v any) string {
	switch d := v.(type) {
	case schema.Expression:
		return string(d)
	case bool:
		if d {
			return "'1'"
		}
		return "'0'"
	default:
		return "'" + escapeString(fmt.Sprint(d)) + "'"
	}
}

func columnType(col *schema.Column) (string, error) {
	render, ok := columnTypes[col.Type]
	if !ok {
		return "", &UnsupportedColumnTypeError{Column: col.Name, Type: col.Type}
	}
	return render(col), nil
}

// columnDefinition - "<name> <type><modifiers>"
func columnDefinition(col *schema.Column) (string, error) {
	typ, err := columnType(col)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(col.Name)
	sb.WriteString(" ")
	sb.WriteString(typ)
	for _, m := range columnModifiers {
		sb.WriteString(m(col))
	}
	return sb.String(), nil
}
