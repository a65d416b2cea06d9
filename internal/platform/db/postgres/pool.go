package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"

	"github.com/ogurasousui/staffboard/internal/platform/config"
)

// BuildPoolConfig は database 設定から pgxpool.Config を構築します。
// クエリのトレースは log に出力され、debug レベルの場合のみ全クエリを記録します。
func BuildPoolConfig(cfg config.DatabaseConfig, log zerolog.Logger) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	poolCfg.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   queryLogger(log.With().Str("component", "pgx").Logger()),
		LogLevel: traceLevel(log),
	}

	return poolCfg, nil
}

// NewPool は pgxpool.Pool を生成し疎通確認を行います。
func NewPool(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := BuildPoolConfig(cfg, log)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	log.Info().Str("host", cfg.Host).Str("database", cfg.Name).Int32("max_conns", poolCfg.MaxConns).Msg("postgres pool ready")
	return pool, nil
}

// traceLevel はロガーの実効レベルが debug の場合だけ全クエリを記録します。
// レベル未設定のロガーは TraceLevel を返すため debug とはみなしません。
func traceLevel(log zerolog.Logger) tracelog.LogLevel {
	lvl := log.GetLevel()
	if global := zerolog.GlobalLevel(); global > lvl {
		lvl = global
	}
	if lvl == zerolog.DebugLevel {
		return tracelog.LogLevelDebug
	}
	return tracelog.LogLevelWarn
}

func queryLogger(log zerolog.Logger) tracelog.Logger {
	return tracelog.LoggerFunc(func(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		var ev *zerolog.Event
		switch level {
		case tracelog.LogLevelError:
			ev = log.Error()
		case tracelog.LogLevelWarn:
			ev = log.Warn()
		case tracelog.LogLevelInfo:
			ev = log.Info()
		default:
			ev = log.Debug()
		}
		ev.Fields(data).Msg(msg)
	})
}
