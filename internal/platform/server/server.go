package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 10 * time.Second

// Server は HTTP サーバーと gRPC サーバーのライフサイクルをまとめて管理します。
type Server struct {
	httpAddr   string
	grpcAddr   string
	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server
	log        zerolog.Logger
}

// Options は Server の構成です。
type Options struct {
	HTTPListenAddr string
	GRPCListenAddr string
	CORSOrigins    []string
}

// New は HTTP ハンドラーと gRPC サービスの登録関数からサーバーを構築します。
// GRPCListenAddr が空の場合は gRPC サーバーを起動しません。
func New(opts Options, handler http.Handler, registerGRPC func(grpc.ServiceRegistrar), log zerolog.Logger, grpcOpts ...grpc.ServerOption) *Server {
	if len(opts.CORSOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}).Handler(handler)
	}

	s := &Server{
		httpAddr: opts.HTTPListenAddr,
		grpcAddr: opts.GRPCListenAddr,
		httpServer: &http.Server{
			Addr:              opts.HTTPListenAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log.With().Str("component", "server").Logger(),
	}

	if s.grpcAddr != "" {
		s.grpcServer = grpc.NewServer(grpcOpts...)
		s.health = health.NewServer()
		healthpb.RegisterHealthServer(s.grpcServer, s.health)
		if registerGRPC != nil {
			registerGRPC(s.grpcServer)
		}
	}

	return s
}

// Run は両方のサーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
// どちらかが異常終了した場合はもう一方も停止します。
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	httpLis, err := net.Listen("tcp", s.httpAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpAddr, err)
	}

	g.Go(func() error {
		s.log.Info().Str("addr", httpLis.Addr().String()).Msg("HTTP server listening")
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", err)
		}
		return nil
	})

	if s.grpcServer != nil {
		grpcLis, err := net.Listen("tcp", s.grpcAddr)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("listen on %s: %w", s.grpcAddr, err)
		}

		g.Go(func() error {
			s.log.Info().Str("addr", grpcLis.Addr().String()).Msg("gRPC server listening")
			if err := s.grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("serve gRPC: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		s.GracefulStop()
		return nil
	})

	return g.Wait()
}

// GracefulStop はサーバーを安全に停止します。
func (s *Server) GracefulStop() {
	if s.health != nil {
		s.health.Shutdown()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Warn().Err(err).Msg("HTTP shutdown")
	}

	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}
	s.log.Info().Msg("servers stopped")
}
