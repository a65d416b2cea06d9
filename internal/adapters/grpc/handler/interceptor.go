package handler

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/staffboard/internal/adapters/authn"
	"github.com/ogurasousui/staffboard/internal/platform/auth"
	"github.com/ogurasousui/staffboard/internal/platform/metrics"
)

const healthServicePrefix = "/grpc.health.v1.Health/"

// UnaryLogger は呼び出しごとにログとメトリクスを記録します。m は nil でも構いません。
func UnaryLogger(log zerolog.Logger, m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		ev := log.Info()
		if err != nil {
			ev = log.Warn().Err(err)
		}
		ev.Str("method", info.FullMethod).Str("code", code.String()).Dur("latency", time.Since(start)).Msg("grpc call")

		if m != nil {
			m.GRPCRequests.WithLabelValues(info.FullMethod, code.String()).Inc()
		}
		return resp, err
	}
}

// UnaryAuth は metadata の authorization を検証し、主体をコンテキストへ格納します。
// ヘルスチェックは認証の対象外です。
func UnaryAuth(a *authn.Authenticator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if strings.HasPrefix(info.FullMethod, healthServicePrefix) {
			return handler(ctx, req)
		}

		var header string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get("authorization"); len(values) > 0 {
				header = values[0]
			}
		}

		raw, err := auth.BearerToken(header)
		if err != nil {
			return nil, toStatusError(err)
		}

		p, err := a.Authenticate(ctx, raw)
		if err != nil {
			return nil, toStatusError(err)
		}

		return handler(authn.WithPrincipal(ctx, p), req)
	}
}
