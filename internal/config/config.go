package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port       string
		CORSOrigin string
	}
	Stats struct {
		Interval time.Duration
	}
}

func Load() Config {
	v := viper.New()
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.cors_origin", "*")
	v.SetDefault("stats.interval_seconds", 60)

	// Map envs
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.cors_origin", "CORS_ORIGIN")
	v.BindEnv("stats.interval_seconds", "STATS_INTERVAL_SECONDS")

	var c Config
	c.Server.Port = toString(v.Get("server.port"))
	c.Server.CORSOrigin = v.GetString("server.cors_origin")
	c.Stats.Interval = time.Duration(v.GetInt("stats.interval_seconds")) * time.Second

	return c
}

func toString(v any) string { return fmt.Sprint(v) }
