package utils

import (
	"context"
	"errors"
	"net"
	"strings"
)

// --- Sentinel Errors for Categorization ---
var (
	ErrRetryFailed      = errors.New("request failed after all retries") // Wraps the last underlying error
	ErrClientHTTPError  = errors.New("client HTTP error (4xx)")          // Wraps original error/status
	ErrServerHTTPError  = errors.New("server HTTP error (5xx)")          // Wraps original error/status
	ErrOtherHTTPError   = errors.New("other HTTP error (non-2xx)")       // Wraps original error/status
	ErrSoftBlocked      = errors.New("soft block response")              // 403 or the vendor soft-block status
	ErrProxyConnect     = errors.New("proxy connection failed")
	ErrAuthFailed       = errors.New("authorization failed")
	ErrVendorNotFound   = errors.New("vendor not registered")
	ErrDirectoryLookup  = errors.New("vendor directory lookup failed")
	ErrLinkExtract      = errors.New("link extraction failed") // Wraps HTML/selector errors on category pages
	ErrEntityBuild      = errors.New("entity build failed")    // Wraps parser panics/errors on product pages
	ErrParsing          = errors.New("parsing error")          // Wraps specific parsing error (HTML, URL, JSON)
	ErrDatabase         = errors.New("database error")         // Wraps badger errors
	ErrStorage          = errors.New("feed storage error")
	ErrRequestCreation  = errors.New("failed to create HTTP request")
	ErrConfigValidation = errors.New("configuration validation error")
)

// CategorizeError maps an error to a predefined category string for logging/metrics.
func CategorizeError(err error) string {
	if err == nil {
		return "None"
	}

	// Check against sentinel errors first
	switch {
	case errors.Is(err, ErrSoftBlocked):
		return "HTTP_SoftBlock"
	case errors.Is(err, ErrRetryFailed):
		// The last underlying failure is carried in the message text.
		errMsg := strings.ToLower(err.Error())
		if errors.Is(err, ErrServerHTTPError) || strings.Contains(errMsg, "server http error") {
			return "RetryFailed_HTTPServer"
		}
		if errors.Is(err, ErrClientHTTPError) || strings.Contains(errMsg, "client http error") {
			return "RetryFailed_HTTPClient"
		}
		if strings.Contains(errMsg, "soft block") {
			return "RetryFailed_SoftBlock"
		}
		if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline exceeded") {
			return "RetryFailed_NetworkTimeout"
		}
		if strings.Contains(errMsg, "connection refused") {
			return "RetryFailed_ConnectionRefused"
		}
		if strings.Contains(errMsg, "no such host") {
			return "RetryFailed_DNSLookup"
		}
		return "RetryFailed_Unknown"
	case errors.Is(err, ErrClientHTTPError):
		errMsg := err.Error()
		if strings.Contains(errMsg, " 404") {
			return "HTTP_404"
		}
		if strings.Contains(errMsg, " 403") {
			return "HTTP_403"
		}
		if strings.Contains(errMsg, " 429") {
			return "HTTP_429"
		}
		return "HTTP_4xx"
	case errors.Is(err, ErrServerHTTPError):
		return "HTTP_5xx"
	case errors.Is(err, ErrOtherHTTPError):
		return "HTTP_OtherStatus"
	case errors.Is(err, ErrProxyConnect):
		return "Proxy_Connect"
	case errors.Is(err, ErrAuthFailed):
		return "Auth_Failed"
	case errors.Is(err, ErrVendorNotFound):
		return "Vendor_NotFound"
	case errors.Is(err, ErrDirectoryLookup):
		return "Vendor_Directory"
	case errors.Is(err, ErrLinkExtract):
		return "Content_LinkExtract"
	case errors.Is(err, ErrEntityBuild):
		return "Content_EntityBuild"
	case errors.Is(err, ErrParsing):
		errMsg := err.Error()
		if strings.Contains(errMsg, "URL") {
			return "Content_ParsingURL"
		}
		if strings.Contains(errMsg, "HTML") {
			return "Content_ParsingHTML"
		}
		if strings.Contains(errMsg, "JSON") {
			return "Content_ParsingJSON"
		}
		return "Content_ParsingOther"
	case errors.Is(err, ErrDatabase):
		return "Database_Other"
	case errors.Is(err, ErrStorage):
		return "Storage_Other"
	case errors.Is(err, ErrRequestCreation):
		return "Internal_RequestCreation"
	case errors.Is(err, ErrConfigValidation):
		return "Config_Validation"
	}

	// --- Fallback checks for common underlying error types/strings ---

	if errors.Is(err, context.Canceled) {
		return "System_ContextCanceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "System_ContextDeadlineExceeded"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "Network_Timeout"
		}
	}
	lowerErrMsg := strings.ToLower(err.Error())
	if strings.Contains(lowerErrMsg, "timeout") {
		return "Network_TimeoutGeneric"
	}
	if strings.Contains(lowerErrMsg, "connection refused") {
		return "Network_ConnectionRefused"
	}
	if strings.Contains(lowerErrMsg, "no such host") {
		return "Network_DNSLookup"
	}
	if strings.Contains(lowerErrMsg, "tls") || strings.Contains(lowerErrMsg, "certificate") {
		return "Network_TLS"
	}
	if strings.Contains(lowerErrMsg, "reset by peer") {
		return "Network_ConnectionReset"
	}

	return "Unknown"
}
