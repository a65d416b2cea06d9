package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/ogurasousui/staffboard/internal/adapters/authn"
	"github.com/ogurasousui/staffboard/internal/adapters/blob"
	httphandler "github.com/ogurasousui/staffboard/internal/adapters/http/handler"
	"github.com/ogurasousui/staffboard/internal/adapters/repository/instrumented"
	"github.com/ogurasousui/staffboard/internal/adapters/repository/postgres"
	"github.com/ogurasousui/staffboard/internal/core/account"
	"github.com/ogurasousui/staffboard/internal/core/company"
	"github.com/ogurasousui/staffboard/internal/core/employee"
	"github.com/ogurasousui/staffboard/internal/core/session"
	"github.com/ogurasousui/staffboard/internal/platform/auth"
	"github.com/ogurasousui/staffboard/internal/platform/config"
	pg "github.com/ogurasousui/staffboard/internal/platform/db/postgres"
	"github.com/ogurasousui/staffboard/internal/platform/metrics"
)

// app は設定から組み立てた依存関係です。
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	pool    *pgxpool.Pool
	metrics *metrics.Metrics
	closers []func()

	accounts      *account.Service
	companies     *company.Service
	registry      *session.Registry
	authenticator *authn.Authenticator
	uploadsDir    string
}

func newApp(ctx context.Context, cfgPath string, log zerolog.Logger) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := pg.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}

	a := &app{cfg: cfg, log: log, pool: pool, metrics: metrics.New()}
	a.closers = append(a.closers, pool.Close)

	blobs, err := a.blobStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	txManager := pg.NewTransactionManager(pool, log)
	employeeRepo := instrumented.NewEmployeeRepository(postgres.NewEmployeeRepository(pool), a.metrics)

	a.companies = company.NewService(postgres.NewCompanyRepository(pool), blobs, nil, txManager, cfg.Storage.LogoMaxBytes)

	accountRepo := postgres.NewAccountRepository(pool)
	a.accounts = account.NewService(accountRepo, accountRepo, txManager, nil, log.With().Str("component", "account").Logger(), account.Options{
		RequireEmailConfirmation: cfg.Auth.RequireEmailConfirmation,
	})

	clock := employee.LocationClock{Location: cfg.App.Location}
	sessionLog := log.With().Str("component", "session").Logger()
	a.registry = session.NewRegistry(
		func() *session.Context { return session.New(a.accounts, a.companies, sessionLog) },
		func(companyID string) *employee.Roster {
			return employee.NewRoster(employeeRepo, companyID, clock, log)
		},
		cfg.Auth.SessionTTL,
		sessionLog,
	)
	a.closers = append(a.closers, a.registry.Close)

	issuer := auth.NewIssuer(cfg.Auth.SigningSecret, cfg.Auth.Issuer, cfg.Auth.SessionTTL)
	a.authenticator = authn.New(issuer, a.registry, log)

	return a, nil
}

func (a *app) blobStore(ctx context.Context) (company.BlobStore, error) {
	switch a.cfg.Storage.Driver {
	case "gcs":
		store, err := blob.NewGCSStore(ctx, a.cfg.Storage.Bucket)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = store.Close() })
		return store, nil
	default:
		store, err := blob.NewFileStore(a.cfg.Storage.Dir, a.cfg.Storage.PublicURL)
		if err != nil {
			return nil, err
		}
		a.uploadsDir = store.Dir()
		return store, nil
	}
}

func (a *app) httpHandler() http.Handler {
	h := httphandler.New(a.authenticator, a.companies, a.log, httphandler.Options{
		Metrics:      a.metrics,
		LogoMaxBytes: a.cfg.Storage.LogoMaxBytes,
		UploadsDir:   a.uploadsDir,
	})
	return h.Router()
}

// Close は生成した資源を逆順に解放します。
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
