package vendors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feed-scraper/pkg/utils"
)

func TestSplitVendorKey(t *testing.T) {
	code, storefront := SplitVendorKey("acme")
	assert.Equal(t, "acme", code)
	assert.Empty(t, storefront)

	code, storefront = SplitVendorKey("acme__eu")
	assert.Equal(t, "acme", code)
	assert.Equal(t, "eu", storefront)
}

func TestDirectoryResolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dx", r.URL.Path)
		assert.Equal(t, "acme", r.URL.Query().Get("code"))
		assert.Equal(t, "eu", r.URL.Query().Get("storefront"))
		json.NewEncoder(w).Encode(DxInfo{
			ID:       7,
			Code:     "acme",
			Name:     "Acme Industrial",
			Prefix:   "ac_",
			FeedType: "product",
		})
	}))
	t.Cleanup(server.Close)

	d := NewDirectory(server.URL, testLogger())
	info, err := d.Resolve(context.Background(), "acme__eu")
	require.NoError(t, err)

	assert.Equal(t, 7, info.ID)
	assert.Equal(t, "ac-", info.Prefix, "legacy underscore prefixes are fixed up")
	assert.Equal(t, "eu", info.Storefront)
	assert.Equal(t, "acme__eu", info.Key())
}

func TestDirectoryResolveFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	d := NewDirectory(server.URL, testLogger())
	_, err := d.Resolve(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrDirectoryLookup))
}

func TestDxInfoKey(t *testing.T) {
	assert.Equal(t, "acme", DxInfo{Code: "acme"}.Key())
	assert.Equal(t, "acme__us", DxInfo{Code: "acme", Storefront: "us"}.Key())
}
