package database_test

import (
	"testing"

	"github.com/gocrud/inject/core"
	"github.com/gocrud/inject/database"
	"github.com/gocrud/inject/di"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name string
}

func TestNewRegistersNamedInstances(t *testing.T) {
	rt := core.NewRuntime()

	opt := database.New(
		database.WithDatabase("master", sqlite.Open("file::memory:?cache=shared"), func(o *database.DatabaseOptions) {
			o.MaxOpenConns = 5
			o.AutoMigrate = []any{&User{}}
		}),
	)
	if err := opt(rt); err != nil {
		t.Fatalf("database.New failed: %v", err)
	}

	db, err := di.Resolve[*gorm.DB](rt.Registry, "db:master")
	if err != nil {
		t.Fatalf("Resolve(db:master) failed: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB() failed: %v", err)
	}
	if stats := sqlDB.Stats(); stats.MaxOpenConnections != 5 {
		t.Errorf("expected MaxOpenConns 5, got %d", stats.MaxOpenConnections)
	}

	if err := db.Create(&User{Name: "test"}).Error; err != nil {
		t.Fatalf("failed to insert record: %v", err)
	}
}

func TestDefaultInstanceGetsBareName(t *testing.T) {
	rt := core.NewRuntime()

	opt := database.New(database.WithDatabase("default", sqlite.Open(":memory:")))
	if err := opt(rt); err != nil {
		t.Fatalf("database.New failed: %v", err)
	}

	if !rt.Registry.Has("db") || !rt.Registry.Has("db:default") {
		t.Error("expected both db and db:default to be registered")
	}
}

func TestInjectorResolvesDatabaseByName(t *testing.T) {
	rt := core.NewRuntime()

	opt := database.New(
		database.WithDatabase("master", sqlite.Open(":memory:"), func(o *database.DatabaseOptions) {
			o.AutoMigrate = []any{&User{}}
		}),
	)
	if err := opt(rt); err != nil {
		t.Fatalf("database.New failed: %v", err)
	}

	type repoDeps struct {
		Master *gorm.DB `inject:"db:master"`
	}

	result, err := rt.Invoke(func(d repoDeps) error {
		return d.Master.Create(&User{Name: "injected"}).Error
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if result != nil {
		t.Errorf("unexpected result: %v", result)
	}
}

func TestBuilderErrors(t *testing.T) {
	builder := database.NewBuilder()

	// 缺少 dialector
	builder.Add("invalid", nil, nil)

	// 重复名称
	builder.Add("dup", sqlite.Open("a"), nil)
	builder.Add("dup", sqlite.Open("b"), nil)

	if _, err := builder.Build(nil); err == nil {
		t.Fatal("expected error, got nil")
	}
}
