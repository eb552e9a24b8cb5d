package sybase

import (
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ruslano69/tdtp-sybase/pkg/core/query"
)

// LiteralKind - как значение попадет в SQL
type LiteralKind int

const (
	// NullLiteral renders as null.
	NullLiteral LiteralKind = iota

	// NumericLiteral renders verbatim, without quotes.
	NumericLiteral

	// StringLiteral renders single-quoted with embedded quotes doubled.
	StringLiteral
)

func (k LiteralKind) String() string {
	switch k {
	case NullLiteral:
		return "null"
	case NumericLiteral:
		return "numeric"
	default:
		return "string"
	}
}

// CompiledBinding - значение, готовое к подстановке в скелет
type CompiledBinding struct {
	Kind LiteralKind
	Text string
}

// Literal returns the SQL text of the binding.
func (b CompiledBinding) Literal() string {
	switch b.Kind {
	case NullLiteral:
		return "null"
	case NumericLiteral:
		return b.Text
	default:
		return "'" + escapeString(b.Text) + "'"
	}
}

// quoteFreeTypes - нативные типы ASE, значения которых подставляются без кавычек
var quoteFreeTypes = map[string]bool{
	"int":       true,
	"numeric":   true,
	"bigint":    true,
	"integer":   true,
	"smallint":  true,
	"tinyint":   true,
	"decimal":   true,
	"double":    true,
	"float":     true,
	"real":      true,
	"bit":       true,
	"binary":    true,
	"varbinary": true,
	"timestamp": true,
	"money":     true,
}

// IsQuoteFree reports whether values of a native type are emitted unquoted.
func IsQuoteFree(nativeType string) bool {
	return quoteFreeTypes[strings.ToLower(strings.TrimSpace(nativeType))]
}

var binaryTypes = map[string]bool{"binary": true, "varbinary": true, "timestamp": true}

// DateTimeFormat is the text form of time.Time values in string literals.
const DateTimeFormat = "2006-01-02 15:04:05.000"

var (
	numericPattern   = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
	hexLiteralPattern = regexp.MustCompile(`^0[xX][0-9a-fA-F]*$`)
)

// CompileBindings classifies every binding of the snapshot by the native
// type of its column. Order follows the placeholders the generator emits:
// insert rows, update assignments, then where conditions with nested
// groups flattened.
func CompileBindings(b *query.Builder, catalog TypeCatalog) ([]CompiledBinding, error) {
	var out []CompiledBinding

	add := func(column string, value any) error {
		compiled, err := compileValue(column, value, catalog)
		if err != nil {
			return err
		}
		out = append(out, compiled)
		return nil
	}

	for _, row := range b.Values {
		for _, a := range row {
			if err := add(a.Column, a.Value); err != nil {
				return nil, err
			}
		}
	}

	for _, a := range b.Set {
		if err := add(a.Column, a.Value); err != nil {
			return nil, err
		}
	}

	for _, w := range query.FlattenAll(b.Wheres) {
		switch w.Kind {
		case query.WhereBasic:
			if err := add(w.Column, w.Value); err != nil {
				return nil, err
			}
		case query.WhereIn, query.WhereNotIn:
			for _, v := range w.Values {
				if err := add(w.Column, v); err != nil {
					return nil, err
				}
			}
		}
	}

	return out, nil
}

// ClassifyRaw classifies bindings of a raw statement by runtime type:
// strings, byte slices and times are quoted, numbers and booleans are not.
func ClassifyRaw(values []any) ([]CompiledBinding, error) {
	out := make([]CompiledBinding, 0, len(values))

	for i, v := range values {
		v, isNull, err := unwrap(v)
		if err != nil {
			return nil, fmt.Errorf("binding %d: %w", i, err)
		}
		if isNull {
			out = append(out, CompiledBinding{Kind: NullLiteral})
			continue
		}

		switch v.(type) {
		case json.Number:
			out = append(out, CompiledBinding{Kind: NumericLiteral, Text: v.(json.Number).String()})
		case string, []byte, time.Time, fmt.Stringer:
			out = append(out, CompiledBinding{Kind: StringLiteral, Text: stringText(v)})
		default:
			text, ok := numericText(v, "")
			if !ok {
				out = append(out, CompiledBinding{Kind: StringLiteral, Text: stringText(v)})
				continue
			}
			out = append(out, CompiledBinding{Kind: NumericLiteral, Text: text})
		}
	}

	return out, nil
}

func compileValue(column string, value any, catalog TypeCatalog) (CompiledBinding, error) {
	value, isNull, err := unwrap(value)
	if err != nil {
		return CompiledBinding{}, fmt.Errorf("column %q: %w", column, err)
	}
	if isNull {
		return CompiledBinding{Kind: NullLiteral}, nil
	}

	nativeType, err := catalog.Lookup(column)
	if err != nil {
		return CompiledBinding{}, err
	}

	if !IsQuoteFree(nativeType) {
		return CompiledBinding{Kind: StringLiteral, Text: stringText(value)}, nil
	}

	text, ok := numericText(value, nativeType)
	if !ok {
		return CompiledBinding{}, &InvalidNumericLiteralError{Column: column, NativeType: nativeType, Value: value}
	}
	return CompiledBinding{Kind: NumericLiteral, Text: text}, nil
}

// unwrap resolves driver.Valuer and pointers, reporting SQL NULL.
// A pointer is kept only when the pointer type alone implements fmt.Stringer.
func unwrap(value any) (any, bool, error) {
	for depth := 0; depth < 8; depth++ {
		if value == nil {
			return nil, true, nil
		}

		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil, true, nil
		}

		if valuer, ok := value.(driver.Valuer); ok {
			v, err := valuer.Value()
			if err != nil {
				return nil, false, err
			}
			value = v
			continue
		}

		if rv.Kind() == reflect.Pointer {
			elem := rv.Elem().Interface()
			_, ptrStringer := value.(fmt.Stringer)
			_, elemStringer := elem.(fmt.Stringer)
			if ptrStringer && !elemStringer {
				return value, false, nil
			}
			value = elem
			continue
		}

		if _, ok := value.(fmt.Stringer); ok {
			return value, false, nil
		}

		return value, false, nil
	}
	return value, false, nil
}

// numericText normalizes a value to an unquoted literal.
func numericText(value any, nativeType string) (string, bool) {
	switch v := value.(type) {
	case int:
		return strconv.FormatInt(int64(v), 10), true
	case int8:
		return strconv.FormatInt(int64(v), 10), true
	case int16:
		return strconv.FormatInt(int64(v), 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint8:
		return strconv.FormatUint(uint64(v), 10), true
	case uint16:
		return strconv.FormatUint(uint64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float32:
		return floatText(float64(v), 32)
	case float64:
		return floatText(v, 64)
	case bool:
		if v {
			return "1", true
		}
		return "0", true
	case []byte:
		if binaryTypes[strings.ToLower(nativeType)] {
			return "0x" + hex.EncodeToString(v), true
		}
		return numericString(string(v), nativeType)
	case string:
		return numericString(v, nativeType)
	case json.Number:
		return numericString(v.String(), nativeType)
	case time.Time:
		return "", false
	case fmt.Stringer:
		return numericString(v.String(), nativeType)
	default:
		return "", false
	}
}

func floatText(f float64, bitSize int) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, bitSize), true
}

func numericString(s, nativeType string) (string, bool) {
	s = strings.TrimSpace(s)
	if numericPattern.MatchString(s) {
		return strings.TrimPrefix(s, "+"), true
	}
	if binaryTypes[strings.ToLower(nativeType)] && hexLiteralPattern.MatchString(s) {
		return s, true
	}
	return "", false
}

// stringText renders a value as the body of a quoted literal.
func stringText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(DateTimeFormat)
	case bool:
		if v {
			return "1"
		}
		return "0"
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
