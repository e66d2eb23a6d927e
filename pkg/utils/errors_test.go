package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "None"},
		{"soft block", fmt.Errorf("%w: status 430", ErrSoftBlocked), "HTTP_SoftBlock"},
		{"retry wrapping server", fmt.Errorf("%w", fmt.Errorf("%w: status 502", ErrServerHTTPError)), "HTTP_5xx"},
		{"retry failed plain", ErrRetryFailed, "RetryFailed_Unknown"},
		{"client 404", fmt.Errorf("%w: status 404", ErrClientHTTPError), "HTTP_404"},
		{"client 403", fmt.Errorf("%w: status 403", ErrClientHTTPError), "HTTP_403"},
		{"client other", fmt.Errorf("%w: status 410", ErrClientHTTPError), "HTTP_4xx"},
		{"proxy", fmt.Errorf("%w: exhausted", ErrProxyConnect), "Proxy_Connect"},
		{"auth", fmt.Errorf("%w: marker missing", ErrAuthFailed), "Auth_Failed"},
		{"vendor", fmt.Errorf("%w: %q", ErrVendorNotFound, "x"), "Vendor_NotFound"},
		{"directory", fmt.Errorf("%w: status 500", ErrDirectoryLookup), "Vendor_Directory"},
		{"link extract", fmt.Errorf("%w: bad selector", ErrLinkExtract), "Content_LinkExtract"},
		{"entity build", fmt.Errorf("%w: panic", ErrEntityBuild), "Content_EntityBuild"},
		{"parsing html", fmt.Errorf("%w: HTML: truncated", ErrParsing), "Content_ParsingHTML"},
		{"database", fmt.Errorf("%w: conflict", ErrDatabase), "Database_Other"},
		{"storage", fmt.Errorf("%w: disk full", ErrStorage), "Storage_Other"},
		{"config", fmt.Errorf("%w: missing field", ErrConfigValidation), "Config_Validation"},
		{"context canceled", context.Canceled, "System_ContextCanceled"},
		{"deadline", context.DeadlineExceeded, "System_ContextDeadlineExceeded"},
		{"timeout string", errors.New("dial tcp: i/o timeout"), "Network_TimeoutGeneric"},
		{"refused", errors.New("connection refused"), "Network_ConnectionRefused"},
		{"dns", errors.New("lookup host: no such host"), "Network_DNSLookup"},
		{"tls", errors.New("x509: certificate signed by unknown authority"), "Network_TLS"},
		{"unknown", errors.New("weird"), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizeError(tt.err))
		})
	}
}

func TestRetryFailedCategorization(t *testing.T) {
	err := fmt.Errorf("%w: https://x: server HTTP error (5xx): status 502", ErrRetryFailed)
	assert.Equal(t, "RetryFailed_HTTPServer", CategorizeError(err))

	err = fmt.Errorf("%w: https://x: soft block response: status 430", ErrRetryFailed)
	assert.Equal(t, "RetryFailed_SoftBlock", CategorizeError(err))

	err = fmt.Errorf("%w: https://x: context deadline exceeded", ErrRetryFailed)
	assert.Equal(t, "RetryFailed_NetworkTimeout", CategorizeError(err))
}
