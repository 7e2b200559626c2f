package config

import (
	"os"
	"strconv"
)

// Config 聚合服务配置
type Config struct {
	// 数据源路径
	Paths struct {
		Roster         string // MDT 会议名册 JSON
		Output         string // 仪表板输出 JSON
		ClinicalNotes  string // 临床记录 JSON
		GenomicsData   string // 基因组数据 JSON
		RadiologyScans string // 放射扫描 CSV
	}

	// 病理数据库（上游数据源，支持 sqlite 文件或共享 postgres）
	Pathology struct {
		Driver       string // "sqlite" 或 "postgres"
		DSN          string // sqlite 文件路径或 postgres 连接串
		MaxOpenConns int
		MaxIdleConns int
	}

	// 检查清单形状配置
	Checklist struct {
		Profile      string // 激活的 profile 名称，内置 "classic" / "merged"
		ProfilesPath string // 可选 YAML 文件，覆盖/扩展内置 profile
	}

	Runner struct {
		// 运行模式
		// 选项：once（单次运行）、polling（轮询）、events（事件驱动）
		Mode string

		// 轮询模式配置
		Polling struct {
			Interval int // 轮询间隔（秒），默认 300 秒
		}

		// 数据收集配置
		Gather struct {
			Timeout       int // 单个患者的收集超时（秒）
			MaxConcurrent int // 并发收集的患者数上限
		}

		// Redis Streams 配置（用于接收事件）
		EventStream   string // 事件流名称，如 "mdt:events"
		ConsumerGroup string // 消费者组名称
		ConsumerName  string // 消费者名称
	}

	// 仪表板快照缓存（可选）
	Cache struct {
		Enabled bool
		TTL     int // 快照 TTL（秒）
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	// 基因组发现的试验/文献注释（可选）
	Enrichment struct {
		Enabled       bool
		MaxResults    int
		TrialsBaseURL string
		PubMedBaseURL string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Paths.Roster = getEnv("ROSTER_PATH", "data/mdt_roster.json")
	cfg.Paths.Output = getEnv("OUTPUT_PATH", "output/mdt_dashboard.json")
	cfg.Paths.ClinicalNotes = getEnv("CLINICAL_NOTES_PATH", "data/clinical_notes.json")
	cfg.Paths.GenomicsData = getEnv("GENOMICS_DATA_PATH", "data/genomics_data.json")
	cfg.Paths.RadiologyScans = getEnv("RADIOLOGY_SCANS_PATH", "data/radiology_scans.csv")

	cfg.Pathology.Driver = getEnv("PATHOLOGY_DB_DRIVER", "sqlite")
	cfg.Pathology.DSN = getEnv("PATHOLOGY_DB_DSN", "data/pathology_db.sqlite")
	cfg.Pathology.MaxOpenConns = getEnvInt("PATHOLOGY_DB_MAX_OPEN_CONNS", 5)
	cfg.Pathology.MaxIdleConns = getEnvInt("PATHOLOGY_DB_MAX_IDLE_CONNS", 2)

	cfg.Checklist.Profile = getEnv("CHECKLIST_PROFILE", "classic")
	cfg.Checklist.ProfilesPath = getEnv("CHECKLIST_PROFILES_PATH", "")

	cfg.Runner.Mode = getEnv("RUN_MODE", "once")
	cfg.Runner.Polling.Interval = getEnvInt("POLLING_INTERVAL", 300)
	cfg.Runner.Gather.Timeout = getEnvInt("GATHER_TIMEOUT", 10)
	cfg.Runner.Gather.MaxConcurrent = getEnvInt("GATHER_MAX_CONCURRENT", 4)
	cfg.Runner.EventStream = getEnv("MDT_EVENT_STREAM", "mdt:events")
	cfg.Runner.ConsumerGroup = getEnv("MDT_CONSUMER_GROUP", "readiness-aggregator-group")
	cfg.Runner.ConsumerName = getEnv("MDT_CONSUMER_NAME", "readiness-aggregator-1")

	cfg.Cache.Enabled = getEnv("CACHE_ENABLED", "false") == "true"
	cfg.Cache.TTL = getEnvInt("CACHE_TTL", 600)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.Enrichment.Enabled = getEnv("ENRICHMENT_ENABLED", "false") == "true"
	cfg.Enrichment.MaxResults = getEnvInt("ENRICHMENT_MAX_RESULTS", 3)
	cfg.Enrichment.TrialsBaseURL = getEnv("TRIALS_BASE_URL", "https://clinicaltrials.gov/api/v2")
	cfg.Enrichment.PubMedBaseURL = getEnv("PUBMED_BASE_URL", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil && v >= 0 {
			return v
		}
	}
	return defaultValue
}
