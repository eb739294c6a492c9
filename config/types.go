package config

import "time"

type Config struct {
	Workers       int
	TickInterval  time.Duration
	PlatformsFile string
	LogLevel      string
	Redis         RedisConfig
	DB            PostgresConfig
	Mongo         MongoConfig
	Scheduler     SchedulerConfig
	Crawl         CrawlConfig
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSL      bool
}

type MongoConfig struct {
	URI         string
	DBName      string
	ArchiveColl string
}

// SchedulerConfig holds the operational tuning values of the backoff
// controller. These are deliberate knobs, not fixed constants.
type SchedulerConfig struct {
	FailureThreshold    int
	BackoffFactor       float64
	PauseCooldown       time.Duration
	DeactivateAfterRuns int
	MaxConcurrentJobs   int
}

type CrawlConfig struct {
	UserAgent       string
	RequestTimeout  time.Duration
	DefaultMaxPages int
}
