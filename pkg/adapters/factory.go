package adapters

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// AdapterConstructor - функция-конструктор адаптера
// Возвращает новый экземпляр адаптера (еще не подключенный к БД)
type AdapterConstructor func() Adapter

// Factory - реестр конструкторов адаптеров по типу
type Factory struct {
	mu       sync.RWMutex
	registry map[string]AdapterConstructor
}

// NewFactory создает пустой реестр
func NewFactory() *Factory {
	return &Factory{
		registry: make(map[string]AdapterConstructor),
	}
}

// Register добавляет конструктор. Повторная регистрация типа - ошибка.
func (f *Factory) Register(dbType string, constructor AdapterConstructor) error {
	if dbType == "" || constructor == nil {
		return fmt.Errorf("adapter registration requires a type and a constructor")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.registry[dbType]; exists {
		return fmt.Errorf("adapter %q is already registered", dbType)
	}
	f.registry[dbType] = constructor
	return nil
}

// Unregister удаляет конструктор
func (f *Factory) Unregister(dbType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.registry, dbType)
}

// IsRegistered проверяет регистрацию типа
func (f *Factory) IsRegistered(dbType string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.registry[dbType]
	return ok
}

// Registered возвращает зарегистрированные типы в алфавитном порядке
func (f *Factory) Registered() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]string, 0, len(f.registry))
	for dbType := range f.registry {
		types = append(types, dbType)
	}
	sort.Strings(types)
	return types
}

// Construct создает адаптер без подключения
func (f *Factory) Construct(dbType string) (Adapter, error) {
	f.mu.RLock()
	constructor, ok := f.registry[dbType]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown database type: %s (available types: %v)", dbType, f.Registered())
	}
	return constructor(), nil
}

// Open создает адаптер и подключает его по конфигурации.
// Значения по умолчанию применяются до проверки.
func (f *Factory) Open(ctx context.Context, cfg Config) (Adapter, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid adapter config: %w", err)
	}

	adapter, err := f.Construct(cfg.Type)
	if err != nil {
		return nil, err
	}

	if err := adapter.Connect(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to connect to %s via %s: %w", cfg.Type, cfg.Driver, err)
	}
	return adapter, nil
}

// ========== Global Factory ==========

var globalFactory = NewFactory()

// Register регистрирует адаптер в глобальном реестре.
// Вызывается из init() пакета адаптера; ошибка регистрации - паника.
func Register(dbType string, constructor AdapterConstructor) {
	if err := globalFactory.Register(dbType, constructor); err != nil {
		panic(err)
	}
}

// IsRegistered проверяет регистрацию в глобальном реестре
func IsRegistered(dbType string) bool {
	return globalFactory.IsRegistered(dbType)
}

// Registered возвращает типы из глобального реестра
func Registered() []string {
	return globalFactory.Registered()
}

// New создает и подключает адаптер через глобальный реестр
//
// Пример:
//
//	adapter, err := adapters.New(ctx, adapters.Config{
//	    Type: "sybase",
//	    DSN:  "DSN=ase;UID=sa;PWD=secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer adapter.Close(ctx)
func New(ctx context.Context, cfg Config) (Adapter, error) {
	return globalFactory.Open(ctx, cfg)
}

// NewWithoutConnect создает адаптер без подключения через глобальный реестр
func NewWithoutConnect(dbType string) (Adapter, error) {
	return globalFactory.Construct(dbType)
}
