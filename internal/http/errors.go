package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"spendlog/internal/core"
	"spendlog/internal/log"
	"spendlog/internal/sheets"
)

const (
	msgStorageUnavailable = "Storage temporarily unavailable"
	msgAuthNotConfigured  = "Server auth not configured. Set JWT_SECRET in .env (e.g. run: openssl rand -hex 32)"
	msgUnauthorized       = "Unauthorized"
	msgInternal           = "Internal server error"
)

// apiError is the HTTP rendering of a domain error.
type apiError struct {
	status  int
	message string
	code    string
}

// classifyError maps domain and storage errors onto status, message and stable code.
func classifyError(err error) apiError {
	var storageErr *core.StorageError

	switch {
	case core.IsValidation(err):
		return apiError{http.StatusBadRequest, validationMessage(err), log.ErrorTypeValidation}
	case errors.Is(err, errMalformedBody):
		return apiError{http.StatusBadRequest, "Malformed request body", log.ErrorTypeValidation}
	case errors.Is(err, core.ErrInvalidCredentials):
		return apiError{http.StatusUnauthorized, capitalize(core.ErrInvalidCredentials.Error()), log.ErrorTypeAuth}
	case errors.Is(err, core.ErrAuthNotConfigured):
		return apiError{http.StatusServiceUnavailable, msgAuthNotConfigured, log.ErrorTypeConfiguration}
	case errors.Is(err, core.ErrUnauthorized):
		return apiError{http.StatusUnauthorized, msgUnauthorized, log.ErrorTypeAuth}
	case errors.Is(err, core.ErrEmailTaken):
		return apiError{http.StatusConflict, capitalize(core.ErrEmailTaken.Error()), log.ErrorTypeConflict}
	case errors.Is(err, core.ErrStorageNotConfigured):
		return apiError{http.StatusBadGateway, msgStorageUnavailable, log.ErrorTypeConfiguration}
	case errors.As(err, &storageErr):
		if storageErr.Kind == core.StorageRangeNotFound {
			return apiError{http.StatusBadGateway, rangeNotFoundHint(storageErr.Table), log.ErrorTypeStorage}
		}
		return apiError{http.StatusBadGateway, msgStorageUnavailable, log.ErrorTypeStorage}
	default:
		return apiError{http.StatusInternalServerError, msgInternal, log.ErrorTypeInternal}
	}
}

// validationMessage returns the innermost validation sentinel's text, dropping
// wrapping context added by lower layers.
func validationMessage(err error) string {
	for _, sentinel := range []error{
		core.ErrInvalidAmount, core.ErrCategoryRequired, core.ErrPaymentModeRequired,
		core.ErrInvalidDate, core.ErrInvalidTime, core.ErrInvalidMonth,
		core.ErrEmailRequired, core.ErrInvalidEmail, core.ErrPasswordRequired,
		core.ErrPasswordTooShort, core.ErrPasswordTooLong, core.ErrCredentialsRequired,
	} {
		if errors.Is(err, sentinel) {
			return capitalize(sentinel.Error())
		}
	}
	return capitalize(err.Error())
}

func rangeNotFoundHint(table string) string {
	if table == "" {
		return "Sheet or range not found. Check the spreadsheet id and tab names."
	}
	header := sheets.HeaderFor(table)
	if header == nil {
		return fmt.Sprintf("Sheet or range not found. Ensure the spreadsheet has a tab named %q with a header in row 1.", table)
	}
	return fmt.Sprintf("Sheet or range not found. Ensure the spreadsheet has a tab named %q with row 1: %s.",
		table, strings.Join(header, ", "))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// writeError logs err with its stable code and writes the JSON error body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := classifyError(err)
	s.events.LogHTTPError(r.Context(), r, e.status, e.code, err)
	ErrorResponse(e.status, e.message, e.code).Write(w)
}
