package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/staffboard/internal/core/account"
	"github.com/ogurasousui/staffboard/internal/core/company"
	"github.com/ogurasousui/staffboard/internal/core/employee"
	"github.com/ogurasousui/staffboard/internal/core/session"
	"github.com/ogurasousui/staffboard/internal/platform/auth"
)

const internalMessage = "request could not be completed"

func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, employee.ErrValidation),
		errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidCompanyID),
		errors.Is(err, employee.ErrInvalidStatus),
		errors.Is(err, employee.ErrInvalidSalary),
		errors.Is(err, employee.ErrInvalidEmail),
		errors.Is(err, employee.ErrInvalidPeriod),
		errors.Is(err, employee.ErrEmptyPatch),
		errors.Is(err, company.ErrInvalidID),
		errors.Is(err, company.ErrInvalidName),
		errors.Is(err, company.ErrInvalidEmail),
		errors.Is(err, company.ErrInvalidTheme),
		errors.Is(err, company.ErrEmptyPatch),
		errors.Is(err, company.ErrUnsupportedLogoType),
		errors.Is(err, company.ErrLogoTooLarge),
		errors.Is(err, account.ErrInvalidID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, account.ErrInvalidCredentials),
		errors.Is(err, session.ErrNotAuthenticated),
		errors.Is(err, session.ErrRevoked),
		errors.Is(err, session.ErrClosed):
		return status.Error(codes.Unauthenticated, "not authenticated")
	case errors.Is(err, account.ErrEmailNotConfirmed):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, session.ErrNoCompany), errors.Is(err, employee.ErrNoCompany):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrCompanyNotFound),
		errors.Is(err, company.ErrCompanyNotFound),
		errors.Is(err, account.ErrUserNotFound),
		errors.Is(err, account.ErrProfileNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, internalMessage)
	}
}
