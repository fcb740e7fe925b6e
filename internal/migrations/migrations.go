// Package migrations применяет SQL миграции хранилища результатов.
package migrations

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/config"
)

// Run применяет все новые миграции. Без DB_HOST хранилище выключено и Run ничего не делает.
func Run(cfg *config.Cfg, log *zap.Logger) error {
	if !cfg.Database.Enabled() {
		log.Debug("Хранилище результатов не настроено, миграции пропущены")
		return nil
	}

	m, err := migrate.New(cfg.Migrations.Path, cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("инициализация миграций: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			log.Warn("Ошибка закрытия миграций", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("Миграции актуальны")
			return nil
		}
		return fmt.Errorf("применение миграций: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Info("Миграции применены", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
