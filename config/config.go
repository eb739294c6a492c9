package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

func Load(filename string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/marketintel")
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("cannot read config file: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("workers", 4)
	v.SetDefault("tickinterval", time.Minute)
	v.SetDefault("platformsfile", "platforms")
	v.SetDefault("loglevel", "info")

	v.SetDefault("redis.host", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "marketintel")
	v.SetDefault("db.dbname", "marketintel")
	v.SetDefault("db.ssl", false)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.dbname", "marketintel")
	v.SetDefault("mongo.archivecoll", "raw_listings")

	v.SetDefault("scheduler.failurethreshold", 3)
	v.SetDefault("scheduler.backofffactor", 2.0)
	v.SetDefault("scheduler.pausecooldown", 24*time.Hour)
	v.SetDefault("scheduler.deactivateafterruns", 3)
	v.SetDefault("scheduler.maxconcurrentjobs", 8)

	v.SetDefault("crawl.useragent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36")
	v.SetDefault("crawl.requesttimeout", 20*time.Second)
	v.SetDefault("crawl.defaultmaxpages", 10)
}

// DSN returns the postgres connection string for sqlx.Connect.
func (c *PostgresConfig) DSN() string {
	ssl := "disable"
	if c.SSL {
		ssl = "require"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, ssl)
}
