package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ogurasousui/staffboard/internal/adapters/authn"
	"github.com/ogurasousui/staffboard/internal/core/company"
	"github.com/ogurasousui/staffboard/internal/platform/metrics"
)

// CompanyService は設定画面が直接利用する会社ユースケースです。
type CompanyService interface {
	SetTheme(ctx context.Context, id string, theme company.Theme) (*company.Company, error)
	UploadLogo(ctx context.Context, in company.UploadLogoInput) (*company.Company, error)
}

// Options は Handler の任意設定です。
type Options struct {
	Metrics      *metrics.Metrics
	LogoMaxBytes int64
	// UploadsDir が空でなければ /uploads でロゴ画像を配信します。
	UploadsDir string
}

// Handler は JSON API の gin ハンドラー群です。
type Handler struct {
	auth      *authn.Authenticator
	companies CompanyService
	log       zerolog.Logger
	opts      Options
}

// New は Handler を生成します。
func New(a *authn.Authenticator, companies CompanyService, log zerolog.Logger, opts Options) *Handler {
	if opts.LogoMaxBytes <= 0 {
		opts.LogoMaxBytes = company.DefaultLogoMaxBytes
	}
	return &Handler{
		auth:      a,
		companies: companies,
		log:       log.With().Str("component", "http").Logger(),
		opts:      opts,
	}
}

// Router はすべてのルートを登録した gin.Engine を返します。
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(h.log))

	if h.opts.Metrics != nil {
		r.Use(Instrument(h.opts.Metrics))
		r.GET("/metrics", gin.WrapH(h.opts.Metrics.Handler()))
	}
	if h.opts.UploadsDir != "" {
		r.Static("/uploads", h.opts.UploadsDir)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	v1.POST("/auth/sign-up", h.signUp)
	v1.POST("/auth/sign-in", h.signIn)
	v1.GET("/navigation", h.navigation)
	v1.GET("/form/options", h.formOptions)

	authed := v1.Group("", RequireSession(h.auth, h.log))
	authed.POST("/auth/sign-out", h.signOut)
	authed.GET("/session", h.session)

	authed.GET("/dashboard", h.dashboard)

	authed.GET("/employees", h.listEmployees)
	authed.POST("/employees", h.createEmployee)
	authed.GET("/employees/export.xlsx", h.exportEmployees)
	authed.GET("/employees/:id", h.getEmployee)
	authed.PATCH("/employees/:id", h.updateEmployee)
	authed.DELETE("/employees/:id", h.deleteEmployee)

	authed.GET("/settings/company", h.getCompany)
	authed.PATCH("/settings/company", h.updateCompany)
	authed.PUT("/settings/company/theme", h.setTheme)
	authed.POST("/settings/company/logo", h.uploadLogo)

	return r
}
