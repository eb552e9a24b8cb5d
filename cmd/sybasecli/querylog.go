package main

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ruslano69/tdtp-sybase/pkg/querylog"
)

// NewQueryLog builds the statement log from the file, redis and metrics sections.
// Without any of them the logger has no appenders.
func NewQueryLog(config *Config) (*querylog.Logger, error) {
	var appenders []querylog.Appender

	if config.QueryLog.File != "" {
		fileAppender, err := querylog.NewFileAppender(querylog.FileAppenderConfig{
			Path:       config.QueryLog.File,
			MaxSizeMB:  config.QueryLog.MaxSizeMB,
			MaxBackups: config.QueryLog.MaxBackups,
			FormatJSON: config.QueryLog.JSON,
		})
		if err != nil {
			return nil, fmt.Errorf("query log file: %w", err)
		}
		appenders = append(appenders, fileAppender)
	}

	if config.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: config.Redis.Addr})
		appenders = append(appenders, querylog.NewRedisAppender(client, querylog.RedisAppenderConfig{
			Prefix: config.Redis.Prefix,
			MaxLen: config.Redis.MaxLen,
			TTL:    time.Duration(config.Redis.TTL) * time.Second,
		}))
	}

	if config.Metrics {
		appenders = append(appenders, querylog.NewMetricsAppender(nil))
	}

	return querylog.NewLogger(querylog.LoggerConfig{
		AsyncMode: config.QueryLog.Async,
		OnError: func(err error) {
			log.Warn().Err(err).Msg("query log")
		},
	}, appenders...), nil
}
