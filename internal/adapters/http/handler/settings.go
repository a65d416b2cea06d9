package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ogurasousui/staffboard/internal/core/company"
	"github.com/ogurasousui/staffboard/internal/core/session"
)

// multipart のヘッダー分を見込んだ余裕です。
const multipartOverhead = 64 << 10

type themeRequest struct {
	Theme company.Theme `json:"theme"`
}

// currentCompany はセッションの会社を返します。未解決ならエラー応答を書きます。
func (h *Handler) currentCompany(c *gin.Context) (*company.Company, bool) {
	snap := principal(c).Workspace.Session.Snapshot()
	if snap.Company == nil {
		writeError(c, h.log, session.ErrNoCompany)
		return nil, false
	}
	return snap.Company, true
}

func (h *Handler) getCompany(c *gin.Context) {
	comp, ok := h.currentCompany(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, comp)
}

func (h *Handler) updateCompany(c *gin.Context) {
	var patch company.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, h.log, errBadRequest)
		return
	}

	updated, err := principal(c).Workspace.Session.UpdateCompany(c.Request.Context(), patch)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) setTheme(c *gin.Context) {
	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, errBadRequest)
		return
	}

	comp, ok := h.currentCompany(c)
	if !ok {
		return
	}

	updated, err := h.companies.SetTheme(c.Request.Context(), comp.ID, req.Theme)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	principal(c).Workspace.Session.ReplaceCompany(updated)
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) uploadLogo(c *gin.Context) {
	comp, ok := h.currentCompany(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.LogoMaxBytes+multipartOverhead)
	fh, err := c.FormFile("logo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, h.log, company.ErrLogoTooLarge)
			return
		}
		writeError(c, h.log, errBadRequest)
		return
	}

	if fh.Size > h.opts.LogoMaxBytes {
		writeError(c, h.log, company.ErrLogoTooLarge)
		return
	}
	contentType := fh.Header.Get("Content-Type")
	if !company.LogoContentTypeAllowed(contentType) {
		writeError(c, h.log, company.ErrUnsupportedLogoType)
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	defer f.Close()

	updated, err := h.companies.UploadLogo(c.Request.Context(), company.UploadLogoInput{
		CompanyID:   comp.ID,
		ContentType: contentType,
		Size:        fh.Size,
		Data:        f,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	principal(c).Workspace.Session.ReplaceCompany(updated)
	c.JSON(http.StatusOK, updated)
}
