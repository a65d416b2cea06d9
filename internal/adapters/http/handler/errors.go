package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ogurasousui/staffboard/internal/core/account"
	"github.com/ogurasousui/staffboard/internal/core/company"
	"github.com/ogurasousui/staffboard/internal/core/employee"
	"github.com/ogurasousui/staffboard/internal/core/session"
	"github.com/ogurasousui/staffboard/internal/platform/auth"
)

const genericErrorMessage = "request could not be completed"

var errBadRequest = errors.New("invalid request body")

// errorBody はエラー応答の JSON です。
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// statusFor はドメインエラーを HTTP ステータスに対応付けます。0 は未分類を表します。
func statusFor(err error) int {
	switch {
	case errors.Is(err, employee.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest),
		errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidCompanyID),
		errors.Is(err, employee.ErrInvalidStatus),
		errors.Is(err, employee.ErrInvalidSalary),
		errors.Is(err, employee.ErrInvalidEmail),
		errors.Is(err, employee.ErrInvalidPeriod),
		errors.Is(err, employee.ErrEmptyPatch),
		errors.Is(err, company.ErrInvalidName),
		errors.Is(err, company.ErrInvalidEmail),
		errors.Is(err, company.ErrInvalidTheme),
		errors.Is(err, company.ErrInvalidID),
		errors.Is(err, company.ErrEmptyPatch),
		errors.Is(err, account.ErrInvalidEmail),
		errors.Is(err, account.ErrInvalidPassword),
		errors.Is(err, account.ErrPasswordMismatch),
		errors.Is(err, account.ErrInvalidCompanyName),
		errors.Is(err, account.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, company.ErrUnsupportedLogoType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, company.ErrLogoTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, account.ErrInvalidCredentials),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, session.ErrNotAuthenticated),
		errors.Is(err, session.ErrRevoked),
		errors.Is(err, session.ErrClosed):
		return http.StatusUnauthorized
	case errors.Is(err, account.ErrEmailNotConfirmed):
		return http.StatusForbidden
	case errors.Is(err, account.ErrEmailAlreadyExists),
		errors.Is(err, session.ErrNoCompany),
		errors.Is(err, employee.ErrNoCompany):
		return http.StatusConflict
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrCompanyNotFound),
		errors.Is(err, company.ErrCompanyNotFound),
		errors.Is(err, account.ErrUserNotFound),
		errors.Is(err, account.ErrProfileNotFound):
		return http.StatusNotFound
	default:
		return 0
	}
}

// writeError はエラーを応答に変換します。分類できないエラーは詳細を隠してログに残します。
func writeError(c *gin.Context, log zerolog.Logger, err error) {
	code := statusFor(err)
	if code == 0 {
		log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.FullPath()).Msg("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: genericErrorMessage})
		return
	}

	body := errorBody{Error: err.Error()}
	var verr *employee.ValidationError
	if errors.As(err, &verr) {
		body.Error = "validation failed"
		body.Fields = verr.Fields
	}
	if code == http.StatusUnauthorized {
		body.Error = "not authenticated"
		if errors.Is(err, account.ErrInvalidCredentials) {
			body.Error = "invalid email or password"
		}
	}

	c.AbortWithStatusJSON(code, body)
}
