package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ogurasousui/staffboard/internal/core/account"
	"github.com/ogurasousui/staffboard/internal/core/navigation"
	"github.com/ogurasousui/staffboard/internal/core/session"
	"github.com/ogurasousui/staffboard/internal/platform/auth"
)

type signUpRequest struct {
	CompanyName     string `json:"company_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type signUpResponse struct {
	UserID                    string `json:"user_id"`
	CompanyID                 string `json:"company_id"`
	EmailConfirmationRequired bool   `json:"email_confirmation_required"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Session   session.Snapshot `json:"session"`
}

type navigationResponse struct {
	Path          string            `json:"path"`
	View          navigation.View   `json:"view"`
	Authenticated bool              `json:"authenticated"`
	Menu          []navigation.Item `json:"menu,omitempty"`
}

func (h *Handler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, errBadRequest)
		return
	}

	res, err := h.auth.SignUp(c.Request.Context(), account.SignUpInput{
		CompanyName:     req.CompanyName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, signUpResponse{
		UserID:                    res.User.ID,
		CompanyID:                 res.CompanyID,
		EmailConfirmationRequired: !res.User.Confirmed(),
	})
}

func (h *Handler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, errBadRequest)
		return
	}

	tok, snap, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, signInResponse{Token: tok.Value, ExpiresAt: tok.ExpiresAt, Session: snap})
}

func (h *Handler) signOut(c *gin.Context) {
	if err := h.auth.SignOut(c.Request.Context(), principal(c)); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) session(c *gin.Context) {
	c.JSON(http.StatusOK, principal(c).Workspace.Session.Snapshot())
}

// navigation はトークンが有効ならその認証状態で、なければ未認証としてパスを解決します。
func (h *Handler) navigation(c *gin.Context) {
	path := c.DefaultQuery("path", "/")
	authenticated, loading := false, false

	if raw, err := auth.BearerToken(c.GetHeader("Authorization")); err == nil {
		if p, err := h.auth.Authenticate(c.Request.Context(), raw); err == nil {
			snap := p.Workspace.Session.Snapshot()
			authenticated, loading = snap.Authenticated(), snap.Loading
		}
	}

	res := navigationResponse{
		Path:          navigation.Clean(path),
		View:          navigation.Resolve(path, authenticated, loading),
		Authenticated: authenticated,
	}
	if authenticated {
		res.Menu = navigation.Menu
	}
	c.JSON(http.StatusOK, res)
}
