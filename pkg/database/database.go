package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sunflower-post/backend/config"
	"github.com/sunflower-post/backend/pkg/logger"
)

// InitDB 根据配置打开 postgres 或 sqlite 连接
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database

	var dialector gorm.Dialector
	switch dbCfg.Driver {
	case "postgres":
		dialector = postgres.New(postgres.Config{
			DSN:                  dbCfg.DSN,
			PreferSimpleProtocol: true,
		})
	case "sqlite":
		dialector = sqlite.Open(dbCfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dbCfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(parseLogLevel(dbCfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbCfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if dbCfg.Driver == "sqlite" {
		// sqlite only tolerates one writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(dbCfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(dbCfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(dbCfg.ConnMaxLifetime)
	}

	logger.Info("database connected", zap.String("driver", dbCfg.Driver))
	return db, nil
}

// Close 关闭底层连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsPostgres reports whether row locking clauses are available.
func IsPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

func parseLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
