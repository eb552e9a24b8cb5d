package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BlueprintFile - YAML представление blueprint
type BlueprintFile struct {
	Table        string        `yaml:"table"`
	Create       bool          `yaml:"create,omitempty"`
	Drop         bool          `yaml:"drop,omitempty"`
	DropIfExists bool          `yaml:"drop_if_exists,omitempty"`
	Columns      []ColumnFile  `yaml:"columns,omitempty"`
	Indexes      []IndexFile   `yaml:"indexes,omitempty"`
	Foreign      []ForeignFile `yaml:"foreign,omitempty"`
	DropColumns  []string      `yaml:"drop_columns,omitempty"`
	Rename       string        `yaml:"rename,omitempty"`
}

// ColumnFile - YAML представление колонки
type ColumnFile struct {
	Name          string     `yaml:"name"`
	Type          ColumnType `yaml:"type"`
	Length        int        `yaml:"length,omitempty"`
	Total         int        `yaml:"total,omitempty"`
	Places        int        `yaml:"places,omitempty"`
	Nullable      bool       `yaml:"nullable,omitempty"`
	Default       any        `yaml:"default,omitempty"`
	DefaultRaw    string     `yaml:"default_raw,omitempty"` // выражение без кавычек, например getdate()
	AutoIncrement bool       `yaml:"auto_increment,omitempty"`
	Allowed       []string   `yaml:"allowed,omitempty"`
}

// IndexFile - YAML представление индекса: kind = primary | unique | index
type IndexFile struct {
	Kind    string   `yaml:"kind"`
	Name    string   `yaml:"name,omitempty"`
	Columns []string `yaml:"columns"`
}

// ForeignFile - YAML представление внешнего ключа
type ForeignFile struct {
	Name       string   `yaml:"name,omitempty"`
	Columns    []string `yaml:"columns"`
	On         string   `yaml:"on"`
	References []string `yaml:"references"`
	OnDelete   string   `yaml:"on_delete,omitempty"`
	OnUpdate   string   `yaml:"on_update,omitempty"`
}

// LoadBlueprint читает blueprint из YAML файла
func LoadBlueprint(path string) (*Blueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("blueprint: read %q: %w", path, err)
	}
	return ParseBlueprint(data)
}

// ParseBlueprint разбирает YAML и строит проверенный blueprint
func ParseBlueprint(data []byte) (*Blueprint, error) {
	var file BlueprintFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("blueprint: parse: %w", err)
	}

	bp, err := file.Blueprint()
	if err != nil {
		return nil, err
	}

	if err := Validate(bp); err != nil {
		return nil, err
	}
	return bp, nil
}

// Blueprint конвертирует файл в blueprint.
// Порядок команд: drop, create, колонки, индексы, внешние ключи, drop_columns, rename.
func (f *BlueprintFile) Blueprint() (*Blueprint, error) {
	bp := NewBlueprint(f.Table)

	if f.DropIfExists {
		bp.DropIfExists()
	} else if f.Drop {
		bp.Drop()
	}

	if f.Create {
		bp.Create()
	}

	for _, c := range f.Columns {
		col := bp.AddColumn(c.Type, c.Name)
		col.Length = c.Length
		col.Total = c.Total
		col.Places = c.Places
		col.Nullable = c.Nullable
		col.AutoIncrement = c.AutoIncrement
		col.Allowed = c.Allowed
		col.Default = c.Default

		if c.DefaultRaw != "" {
			col.Default = Expression(c.DefaultRaw)
		}

		switch c.Type {
		case TypeChar, TypeString:
			col.Length = lengthOrDefault(c.Length)
		case TypeDecimal:
			if col.Total == 0 {
				col.Total = DefaultTotal
			}
			if col.Places == 0 {
				col.Places = DefaultPlaces
			}
		case TypeNumeric:
			if col.Total == 0 {
				col.Total = DefaultTotal
			}
		}
	}

	for _, idx := range f.Indexes {
		var cmd *Command
		switch idx.Kind {
		case "primary":
			cmd = bp.Primary(idx.Columns...)
		case "unique":
			cmd = bp.Unique(idx.Columns...)
		case "index", "":
			cmd = bp.Index(idx.Columns...)
		default:
			return nil, fmt.Errorf("blueprint: unknown index kind %q", idx.Kind)
		}
		if idx.Name != "" {
			cmd.WithName(idx.Name)
		}
	}

	for _, fk := range f.Foreign {
		cmd := bp.Foreign(fk.Columns...).
			ReferencesOn(fk.On, fk.References...).
			WithOnDelete(fk.OnDelete).
			WithOnUpdate(fk.OnUpdate)
		if fk.Name != "" {
			cmd.WithName(fk.Name)
		}
	}

	if len(f.DropColumns) > 0 {
		bp.DropColumn(f.DropColumns...)
	}

	if f.Rename != "" {
		bp.Rename(f.Rename)
	}

	return bp, nil
}
