package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ogurasousui/staffboard/internal/adapters/authn"
	"github.com/ogurasousui/staffboard/internal/platform/auth"
	"github.com/ogurasousui/staffboard/internal/platform/metrics"
)

const principalKey = "staffboard_principal"

// RequestLogger は 1 リクエストごとにアクセスログを出力します。
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		if status >= 500 {
			ev = log.Error()
		} else if status >= 400 {
			ev = log.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Instrument はルート単位のリクエスト数と所要時間を記録します。
func Instrument(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RequireSession は Bearer トークンを検証し、セッションの Workspace をコンテキストへ格納します。
func RequireSession(a *authn.Authenticator, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			writeError(c, log, err)
			return
		}

		p, err := a.Authenticate(c.Request.Context(), raw)
		if err != nil {
			writeError(c, log, err)
			return
		}

		c.Set(principalKey, p)
		c.Next()
	}
}

// principal は RequireSession が格納した主体を返します。
func principal(c *gin.Context) *authn.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*authn.Principal)
	return p
}
