package schema

import "fmt"

// Validate проверяет корректность blueprint до компиляции в DDL
func Validate(b *Blueprint) error {
	if b == nil {
		return fmt.Errorf("blueprint is nil")
	}
	if b.Table == "" {
		return &ValidationError{Message: "table name is empty"}
	}

	names := make(map[string]bool)
	autoIncrements := 0

	for i, col := range b.Columns {
		// Проверка имени колонки
		if col.Name == "" {
			return &ValidationError{Table: b.Table, Message: fmt.Sprintf("column at index %d has empty name", i)}
		}

		// Проверка уникальности имен
		if names[col.Name] {
			return &ValidationError{Table: b.Table, Column: col.Name, Message: "duplicate column name"}
		}
		names[col.Name] = true

		// Проверка типа
		if !IsValidType(col.Type) {
			return &ValidationError{Table: b.Table, Column: col.Name, Message: fmt.Sprintf("invalid type '%s'", col.Type)}
		}

		switch col.Type {
		case TypeChar, TypeString:
			if col.Length <= 0 {
				return &ValidationError{Table: b.Table, Column: col.Name, Message: "length must be positive"}
			}
		case TypeDecimal:
			if col.Total <= 0 || col.Places < 0 || col.Places > col.Total {
				return &ValidationError{Table: b.Table, Column: col.Name,
					Message: fmt.Sprintf("invalid precision %d/%d", col.Total, col.Places)}
			}
		case TypeNumeric:
			if col.Total <= 0 {
				return &ValidationError{Table: b.Table, Column: col.Name, Message: "numeric total must be positive"}
			}
		}

		if col.AutoIncrement {
			autoIncrements++
		}
	}

	// В таблице Sybase допустима только одна identity колонка
	if autoIncrements > 1 {
		return &ValidationError{Table: b.Table, Message: "more than one auto-increment column"}
	}

	for _, cmd := range b.Commands {
		switch cmd.Name {
		case CommandPrimary, CommandUnique, CommandIndex, CommandForeign, CommandDropColumn:
			if len(cmd.Columns) == 0 {
				return &ValidationError{Table: b.Table, Message: fmt.Sprintf("%s command without columns", cmd.Name)}
			}
		case CommandRename:
			if cmd.To == "" {
				return &ValidationError{Table: b.Table, Message: "rename without target name"}
			}
		case CommandDropPrimary, CommandDropUnique, CommandDropIndex, CommandDropForeign:
			if cmd.Index == "" {
				return &ValidationError{Table: b.Table, Message: fmt.Sprintf("%s command without index name", cmd.Name)}
			}
		}

		if cmd.Name == CommandForeign && (cmd.On == "" || len(cmd.References) == 0) {
			return &ValidationError{Table: b.Table, Message: "foreign key without referenced table"}
		}
	}

	return nil
}
