package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"socialdash/internal/model"
)

// MySQL returns an Opener that connects GORM to the given DSN.
// Driver errors are translated (duplicate keys become gorm.ErrDuplicatedKey).
func MySQL(dsn string) Opener {
	return func(ctx context.Context) (*gorm.DB, error) {
		db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return nil, fmt.Errorf("connect mysql: %w", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("gorm sql db: %w", err)
		}
		sqlDB.SetConnMaxIdleTime(15 * time.Minute)
		sqlDB.SetConnMaxLifetime(time.Hour)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(pingCtx); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("ping mysql: %w", err)
		}
		return db, nil
	}
}

// Migrate creates or updates the tables of every storage document.
func Migrate(ctx context.Context, c *Connector) error {
	gormDB, err := c.DB(ctx)
	if err != nil {
		return err
	}
	if err := gormDB.WithContext(ctx).AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// DropAll drops every table. Used by RESET_DB.
func DropAll(ctx context.Context, c *Connector) error {
	gormDB, err := c.DB(ctx)
	if err != nil {
		return err
	}
	tables := model.All()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := gormDB.WithContext(ctx).Migrator().DropTable(tables[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
