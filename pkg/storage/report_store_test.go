package storage

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feed-scraper/pkg/feed"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func TestReportStoreSaveAndClear(t *testing.T) {
	dir := t.TempDir()
	store := NewReportStore(dir, testLogger())

	report := feed.Report{
		"images": {"No images": []string{"AC-100", "AC-200"}},
	}

	path, err := store.Save("acme__eu", report)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "acme__eu_error.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    ", "report is pretty-printed")

	var decoded feed.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report, decoded)

	// A clean run deletes the prior report.
	path, err = store.Save("acme__eu", feed.Report{})
	require.NoError(t, err)
	assert.Empty(t, path)
	_, err = os.Stat(filepath.Join(dir, "acme__eu_error.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestReportStoreCleanRunWithoutPriorReport(t *testing.T) {
	store := NewReportStore(t.TempDir(), testLogger())
	path, err := store.Save("acme", feed.Report{})
	require.NoError(t, err)
	assert.Empty(t, path)
}
