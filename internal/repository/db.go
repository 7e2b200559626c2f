package repository

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"mdt-readiness-aggregator/internal/config"
)

// OpenPathologyDB 打开上游病理数据库连接
// driver: "sqlite"（原始数据集为 sqlite 文件）或 "postgres"（共享部署）
func OpenPathologyDB(cfg *config.Config) (*sql.DB, error) {
	var driverName string
	switch cfg.Pathology.Driver {
	case "sqlite":
		driverName = "sqlite"
	case "postgres":
		driverName = "postgres"
	default:
		return nil, fmt.Errorf("unsupported pathology db driver: %s", cfg.Pathology.Driver)
	}

	db, err := sql.Open(driverName, cfg.Pathology.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open pathology database: %w", err)
	}

	// 设置连接池参数
	if cfg.Pathology.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Pathology.MaxOpenConns)
	}
	if cfg.Pathology.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.Pathology.MaxIdleConns)
	}

	// 测试连接
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping pathology database: %w", err)
	}

	return db, nil
}

// Close 关闭数据库连接
func Close(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
