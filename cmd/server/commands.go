package main

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"

	grpchandler "github.com/ogurasousui/staffboard/internal/adapters/grpc/handler"
	"github.com/ogurasousui/staffboard/internal/platform/logger"
	"github.com/ogurasousui/staffboard/internal/platform/server"
)

// ServeCmd は HTTP と gRPC のサーバーを起動します。
type ServeCmd struct {
	SweepInterval time.Duration `help:"How often idle sessions are evicted." default:"1m" env:"STAFFBOARD_SWEEP_INTERVAL"`
}

// Run はサーバーを起動し、シグナルを受けるまでブロックします。
func (c *ServeCmd) Run(ctx context.Context, g *Globals) error {
	log := logger.Setup(g.Debug)

	a, err := newApp(ctx, g.ConfigPath, log)
	if err != nil {
		return err
	}
	defer a.Close()

	go a.sweep(ctx, c.SweepInterval)

	srv := server.New(
		server.Options{
			HTTPListenAddr: a.cfg.Server.HTTPListenAddr,
			GRPCListenAddr: a.cfg.Server.GRPCListenAddr,
			CORSOrigins:    a.cfg.Server.CORSOrigins,
		},
		a.httpHandler(),
		func(r grpc.ServiceRegistrar) {
			grpchandler.RegisterDashboardServer(r, grpchandler.NewDashboardHandler())
			grpchandler.RegisterEmployeeServer(r, grpchandler.NewEmployeeHandler())
			grpchandler.RegisterCompanyServer(r, grpchandler.NewCompanyHandler(a.companies))
		},
		log,
		grpc.ChainUnaryInterceptor(
			grpchandler.UnaryLogger(log, a.metrics),
			grpchandler.UnaryAuth(a.authenticator),
		),
	)

	log.Info().Str("version", g.Version).Msg("starting staffboard")
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// ConfirmEmailCmd はメール確認の代わりに運用者がアカウントを確認済みにします。
type ConfirmEmailCmd struct {
	Email string `arg:"" help:"Email address to confirm."`
}

// Run はメールアドレスを確認済みにします。
func (c *ConfirmEmailCmd) Run(ctx context.Context, g *Globals) error {
	log := logger.Setup(g.Debug)

	a, err := newApp(ctx, g.ConfigPath, log)
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.accounts.ConfirmEmail(ctx, c.Email)
	if err != nil {
		return fmt.Errorf("confirm %s: %w", c.Email, err)
	}

	log.Info().Str("user_id", u.ID).Str("email", u.Email).Time("confirmed_at", *u.EmailConfirmedAt).Msg("email confirmed")
	return nil
}

func (a *app) sweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := a.registry.Sweep(now.UTC()); n > 0 {
				a.log.Debug().Int("evicted", n).Msg("idle sessions evicted")
			}
			a.metrics.Workspaces.Set(float64(a.registry.Len()))
		}
	}
}
