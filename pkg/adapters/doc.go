/*
Package adapters описывает интерфейс адаптера диалекта и реестр адаптеров.

# Архитектура

	┌─────────────────────────────────────────┐
	│    query.Generator / schema.Blueprint   │
	│  - скелет SQL с плейсхолдерами "?"      │
	│  - сырые значения + снимок построителя  │
	└─────────────────┬───────────────────────┘
	                  │ query.Statement
	┌─────────────────▼───────────────────────┐
	│  adapters.Adapter                       │  ← pkg/adapters/adapter.go
	│    Select / Statement / Affecting       │
	│    Transaction / Pretend                │
	│    ApplyBlueprint / TableExists         │
	└─────────────────┬───────────────────────┘
	                  │
	┌─────────────────▼───────────────────────┐
	│  sybase.Adapter                         │  ← pkg/adapters/sybase
	│    каталог типов → литералы → драйвер   │
	└─────────────────────────────────────────┘

# Регистрация

Адаптер регистрируется в init() своего пакета:

	func init() {
	    adapters.Register("sybase", func() adapters.Adapter {
	        return sybase.New()
	    })
	}

Клиент подключает пакет через blank import и создает адаптер по типу:

	import _ "github.com/ruslano69/tdtp-sybase/pkg/adapters/sybase"

	adapter, err := adapters.New(ctx, adapters.Config{
	    Type:   "sybase",
	    Driver: "odbc",
	    DSN:    "DSN=ase;UID=sa;PWD=secret",
	})

# Транзакции

Transaction получает функцию над Executor. Ошибка функции откатывает
транзакцию и возвращается без изменений:

	err := adapter.Transaction(ctx, func(tx adapters.Executor) error {
	    if _, err := tx.Statement(ctx, insert); err != nil {
	        return err
	    }
	    _, err := tx.AffectingStatement(ctx, update)
	    return err
	})
*/
package adapters
