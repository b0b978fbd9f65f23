package google

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"

	"google.golang.org/api/googleapi"

	"spendlog/internal/core"
)

// classify maps API and transport failures onto core.StorageError so the
// HTTP layer can tell "sheet missing" from "upstream down".
func classify(op, table string, err error) error {
	if err == nil {
		return nil
	}
	if kind, ok := storageKind(err); ok {
		return &core.StorageError{Kind: kind, Op: op, Table: table, Err: err}
	}
	return fmt.Errorf("%s %s: %w", op, table, err)
}

func storageKind(err error) (core.StorageErrorKind, bool) {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusNotFound:
			return core.StorageRangeNotFound, true
		case gerr.Code == http.StatusBadRequest && strings.Contains(gerr.Message, "Unable to parse range"):
			return core.StorageRangeNotFound, true
		case gerr.Code >= 500, gerr.Code == http.StatusTooManyRequests:
			return core.StorageUnavailable, true
		}
		return 0, false
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return core.StorageUnavailable, true
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return core.StorageUnavailable, true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return core.StorageUnavailable, true
	}
	return 0, false
}
