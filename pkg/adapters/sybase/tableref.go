package sybase

import (
	"regexp"
	"strings"
)

// RefKind - форма ссылки на таблицу
type RefKind int

const (
	// RefSimple - "table" или "table as alias"
	RefSimple RefKind = iota

	// RefQualified - "db..table" или "db..table as alias"
	RefQualified

	// RefUnparsed - ссылка не разобрана, вся строка используется как имя таблицы
	RefUnparsed
)

func (k RefKind) String() string {
	switch k {
	case RefSimple:
		return "simple"
	case RefQualified:
		return "qualified"
	default:
		return "unparsed"
	}
}

// TableRef - разобранная ссылка на таблицу из FROM или JOIN
type TableRef struct {
	Kind     RefKind
	Database string
	Table    string
	Alias    string
	Raw      string
}

var aliasSeparator = regexp.MustCompile(`(?i)\s+as\s+`)

// ParseTableRef разбирает ссылку вида [db..]table[ as alias].
// Неоднозначные ссылки (несколько "as", пробелы внутри имени) дают RefUnparsed.
func ParseTableRef(raw string) TableRef {
	unparsed := TableRef{Kind: RefUnparsed, Table: strings.TrimSpace(raw), Raw: raw}

	rest := strings.TrimSpace(raw)
	if rest == "" {
		return unparsed
	}

	ref := TableRef{Kind: RefSimple, Raw: raw}

	if i := strings.Index(rest, ".."); i >= 0 {
		ref.Kind = RefQualified
		ref.Database = rest[:i]
		rest = rest[i+2:]
		if ref.Database == "" || hasSpace(ref.Database) {
			return unparsed
		}
	}

	parts := aliasSeparator.Split(rest, -1)
	switch len(parts) {
	case 1:
		ref.Table = rest
	case 2:
		ref.Table = strings.TrimSpace(parts[0])
		ref.Alias = strings.TrimSpace(parts[1])
		if ref.Alias == "" || hasSpace(ref.Alias) {
			return unparsed
		}
	default:
		return unparsed
	}

	if ref.Table == "" || hasSpace(ref.Table) || strings.Contains(ref.Table, "..") {
		return unparsed
	}

	return ref
}

// Name возвращает имя таблицы с базой для RefQualified
func (r TableRef) Name() string {
	if r.Kind == RefQualified {
		return r.Database + ".." + r.Table
	}
	return r.Table
}

// keyPrefixes - префиксы ключей каталога в нижнем регистре
func (r TableRef) keyPrefixes() []string {
	prefixes := []string{strings.ToLower(r.Table)}
	if r.Kind == RefQualified {
		prefixes = append(prefixes, strings.ToLower(r.Name()))
	}
	if r.Alias != "" {
		prefixes = append(prefixes, strings.ToLower(r.Alias))
	}
	return prefixes
}

func hasSpace(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	}) >= 0
}

// escapeString удваивает одинарные кавычки для строкового литерала
func escapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
