package config

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

type Database struct {
	*sqlx.DB
}

func NewDatabaseConnection(dbDriver string, dbConnectionStr string) (*Database, error) {
	database, err := sqlx.Connect(dbDriver, dbConnectionStr)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := database.Ping(); err != nil {
		return nil, fmt.Errorf("ошибка пинга БД: %w", err)
	}

	zap.L().Info("подключение к БД успешно выполнено", zap.String("driver", dbDriver))
	return &Database{
		database,
	}, nil
}

// gooseUp : подменяется в тестах
var gooseUp = goose.UpContext

// Migrate : применяет миграции из встроенной ФС (см. internal/migrations)
func (db *Database) Migrate(ctx context.Context, migrations fs.FS, dir string) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("ошибка установки диалекта goose: %w", err)
	}

	if err := gooseUp(ctx, db.DB.DB, dir); err != nil {
		return fmt.Errorf("ошибка применения миграций %s: %w", dir, err)
	}

	zap.L().Info("миграции применены", zap.String("dir", dir))
	return nil
}

func (db *Database) Close() error {
	err := db.DB.Close()
	if err != nil {
		return fmt.Errorf("ошибка закрытия соединения с БД: %w", err)
	}

	return nil
}
