package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup はアプリケーション共通のロガーを生成します。dev が true の場合は人間向けの出力になります。
func Setup(dev bool) zerolog.Logger {
	return New(os.Stderr, dev)
}

// New は出力先を指定してロガーを生成します。
func New(out io.Writer, dev bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Caller().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	return logger
}
