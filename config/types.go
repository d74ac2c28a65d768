package config

import "time"

type AppConfig struct {
	DBDriver      string         `yaml:"db_driver" env:"KENDALA_DB_DRIVER" env-default:"sqlite"`
	DBURL         string         `yaml:"db_url" env:"KENDALA_DB_URL" env-default:"data/kendala.db"`
	ListenAddr    string         `yaml:"listen_addr" env:"KENDALA_LISTEN_ADDR" env-default:"0.0.0.0:8080"`
	SessionTTL    time.Duration  `yaml:"session_ttl" env:"KENDALA_SESSION_TTL" env-default:"3h"`
	Pepper        string         `yaml:"pepper" env:"KENDALA_PEPPER"`
	TimeZone      string         `yaml:"time_zone" env:"KENDALA_TIME_ZONE" env-default:"Asia/Jakarta"`
	AdminPassword string         `yaml:"admin_password" env:"KENDALA_ADMIN_PASSWORD" env-default:"admin123"`
	Kendala       KendalaConfig  `yaml:"kendala"`
	Sweeper       SweeperConfig  `yaml:"sweeper"`
	Evidence      EvidenceConfig `yaml:"evidence"`
	Export        ExportConfig   `yaml:"export"`
}

type KendalaConfig struct {
	// DeadlineWindow is the period after creation within which resolution
	// evidence must be submitted.
	DeadlineWindow     time.Duration `yaml:"deadline_window" env:"KENDALA_DEADLINE_WINDOW" env-default:"2h"`
	RecurringThreshold int           `yaml:"recurring_threshold" env:"KENDALA_RECURRING_THRESHOLD" env-default:"2"`
}

type SweeperConfig struct {
	Enabled         bool `yaml:"enabled" env:"KENDALA_SWEEPER_ENABLED" env-default:"true"`
	IntervalMinutes int  `yaml:"interval_minutes" env:"KENDALA_SWEEPER_INTERVAL_MINUTES" env-default:"5"`
}

type EvidenceConfig struct {
	StorageDir     string `yaml:"storage_dir" env:"KENDALA_EVIDENCE_STORAGE_DIR" env-default:"data/evidence"`
	UploadMaxBytes int64  `yaml:"upload_max_bytes" env:"KENDALA_EVIDENCE_UPLOAD_MAX_BYTES" env-default:"10485760"`
}

type ExportConfig struct {
	Filename string `yaml:"filename" env:"KENDALA_EXPORT_FILENAME" env-default:"kendala_export.xlsx"`
}

const maxUserSessionTTL = 12 * time.Hour

func (c *AppConfig) EffectiveSessionTTL() time.Duration {
	ttl := 3 * time.Hour
	if c != nil && c.SessionTTL > 0 {
		ttl = c.SessionTTL
	}
	if ttl > maxUserSessionTTL {
		return maxUserSessionTTL
	}
	return ttl
}

func (c *AppConfig) SweepInterval() time.Duration {
	if c == nil || c.Sweeper.IntervalMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Sweeper.IntervalMinutes) * time.Minute
}
