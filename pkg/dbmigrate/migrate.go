package dbmigrate

import (
	"fmt"

	"github.com/kyanome/rag-backend/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	log "github.com/sirupsen/logrus"
)

const defaultMigrationsPath = "db/migrations"

// Up 执行 db/migrations 下未执行的迁移，没有新迁移时不报错
func Up() error {
	cfg := config.GetInstance()

	if !cfg.GetBoolOrDefault(config.BaseDbMigrate, false) {
		log.Info("auto migrate disabled, skip")
		return nil
	}

	path := cfg.GetStringOrDefault(config.BaseDbMigratePath, defaultMigrationsPath)
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.GetString(config.BaseDbXormUsername),
		cfg.GetString(config.BaseDbXormPassword),
		cfg.GetString(config.BaseDbXormHost),
		cfg.GetString(config.BaseDbXormPort),
		cfg.GetString(config.BaseDbXormName),
	)

	m, err := migrate.New(fmt.Sprintf("file://%s", path), dsn)
	if err != nil {
		return fmt.Errorf("init migrate error: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Errorf("close migrate source error: %v", srcErr)
		}
		if dbErr != nil {
			log.Errorf("close migrate db error: %v", dbErr)
		}
	}()

	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations error: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("get migration version error: %w", err)
	}
	log.Infof("migrations up to date, version=%d dirty=%v", version, dirty)

	return nil
}
