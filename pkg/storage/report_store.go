package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"feed-scraper/pkg/feed"
	"feed-scraper/pkg/utils"
)

// ReportStore persists validation reports per vendor key. A clean run
// deletes the prior report, signalling a fully valid feed.
type ReportStore struct {
	dir string
	log *logrus.Entry
}

// NewReportStore writes reports under dir.
func NewReportStore(dir string, log *logrus.Entry) *ReportStore {
	return &ReportStore{dir: dir, log: log.WithField("component", "report_store")}
}

// Path returns the report location for a vendor key.
func (s *ReportStore) Path(vendorKey string) string {
	return filepath.Join(s.dir, vendorKey+"_error.json")
}

// Save writes the report pretty-printed, or deletes any prior report when
// the batch validated clean. Returns the report path when one was written.
func (s *ReportStore) Save(vendorKey string, report feed.Report) (string, error) {
	path := s.Path(vendorKey)

	if report.Empty() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("%w: removing stale report: %v", utils.ErrStorage, err)
		}
		s.log.WithField("vendor", vendorKey).Info("Feed valid, prior report cleared")
		return "", nil
	}

	data, err := json.MarshalIndent(report, "", "    ")
	if err != nil {
		return "", fmt.Errorf("%w: encoding report: %v", utils.ErrStorage, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating logs dir: %v", utils.ErrStorage, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: writing %s: %v", utils.ErrStorage, path, err)
	}

	s.log.WithFields(logrus.Fields{"vendor": vendorKey, "path": path}).Warn("Validation report written")
	return path, nil
}
