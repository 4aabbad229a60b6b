package db

import (
	"context"
	"daylog-service/internal/domain"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// Classification is the HTTP-facing view of a storage error.
// Message is empty when the error text must not be shown.
type Classification struct {
	Status  int
	Message string
	Code    string
}

// Classify maps a storage error to a status and message.
// Connectivity failures are 503 with a diagnostic; anything else is 500,
// with the error text only outside production.
func Classify(err error, production bool) Classification {
	if err == nil {
		return Classification{Status: http.StatusOK}
	}

	if errors.Is(err, domain.ErrDatabaseUnconfigured) {
		return Classification{Status: http.StatusServiceUnavailable, Message: err.Error(), Code: "UNCONFIGURED"}
	}

	if code := connectionCode(err); code != "" {
		return Classification{
			Status:  http.StatusServiceUnavailable,
			Message: fmt.Sprintf("Database connection failed (%s). Check PGHOST/PGPORT and that Postgres is running.", code),
			Code:    code,
		}
	}

	if production {
		return Classification{Status: http.StatusInternalServerError}
	}
	return Classification{Status: http.StatusInternalServerError, Message: err.Error()}
}

// connectionCode names the connectivity failure behind err, or returns "".
func connectionCode(err error) string {
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return "ECONNREFUSED"
	case errors.Is(err, syscall.ECONNRESET):
		return "ECONNRESET"
	case errors.Is(err, syscall.ETIMEDOUT), errors.Is(err, context.DeadlineExceeded):
		return "ETIMEDOUT"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "ENOTFOUND"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "ETIMEDOUT"
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return "CONNECTION_FAILED"
	}

	// Class 08: connection exception.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" {
		return pgErr.Code
	}

	if pgconn.SafeToRetry(err) {
		return "CONNECTION_LOST"
	}

	return ""
}
