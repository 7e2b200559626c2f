// 重建示例病理数据库（本地开发与评估用）
// 使用 PATHOLOGY_DB_DRIVER / PATHOLOGY_DB_DSN 指定目标库，默认 data/pathology_db.sqlite
package main

import (
	"fmt"
	"os"

	"mdt-readiness-aggregator/internal/config"
	"mdt-readiness-aggregator/internal/repository"
)

const schema = `
DROP TABLE IF EXISTS pathology_reports;
CREATE TABLE pathology_reports (
    patient_id        TEXT NOT NULL,
    diagnosis         TEXT NOT NULL,
    histological_type TEXT NOT NULL,
    grade             TEXT NOT NULL,
    er_status         TEXT,
    pr_status         TEXT,
    her2_status       TEXT,
    ki67_percentage   REAL,
    nodes_positive    INTEGER,
    nodes_examined    INTEGER,
    margins           TEXT,
    full_report_text  TEXT,
    signed_date       TEXT NOT NULL
);
`

const seedRows = `
INSERT INTO pathology_reports VALUES
  ('P001', 'Invasive ductal carcinoma', 'Ductal', '2',
   'Positive', 'Positive', 'Negative', 22.5, 1, 4,
   'Clear', NULL, '2025-02-15'),
  ('P001', 'Invasive ductal carcinoma (core biopsy, preliminary)', 'Ductal', '2',
   'Positive', NULL, NULL, NULL, NULL, NULL,
   NULL, NULL, '2025-01-28'),
  ('P002', 'Invasive lobular carcinoma', 'Lobular', '3',
   'Positive', 'Negative', 'Negative', 35.0, 3, 12,
   'Involved', NULL, '2025-03-02'),
  ('P003', 'Triple negative invasive carcinoma', 'Ductal', '3',
   'Negative', 'Negative', 'Negative', 62.0, 0, 3,
   'Clear', NULL, '2025-02-22'),
  ('P004', 'Invasive ductal carcinoma', 'Ductal', '2',
   'Negative', 'Negative', 'Positive', 28.0, 2, 10,
   'Clear', NULL, '2025-02-19');
`

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 连接病理数据库（文件不存在时自动创建）
	db, err := repository.OpenPathologyDB(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open pathology database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 重建表
	if _, err := db.Exec(schema); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create pathology_reports table: %v\n", err)
		os.Exit(1)
	}

	// 写入示例报告
	if _, err := db.Exec(seedRows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed pathology_reports: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ pathology_reports seeded successfully (%s)\n", cfg.Pathology.DSN)
}
