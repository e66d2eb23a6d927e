package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"feed-scraper/pkg/feed"
	"feed-scraper/pkg/utils"
)

// inventoryItem is the reduced record persisted for inventory-type feeds,
// which carry stock and pricing only.
type inventoryItem struct {
	ProductCode string  `json:"productcode"`
	Mpn         string  `json:"mpn"`
	CostToUs    float64 `json:"cost_to_us"`
	ListPrice   float64 `json:"list_price"`
	RAvail      *int    `json:"r_avail"`
	Forsale     string  `json:"forsale"`
	MinAmount   int     `json:"min_amount"`
}

// FileStorage accumulates entities across SaveFeed calls and writes one
// pretty-printed JSON feed file on Shutdown.
type FileStorage struct {
	path     string
	feedType string
	log      *logrus.Entry

	mu    sync.Mutex
	items []*feed.Item
}

// NewFileStorage writes the feed for vendorKey under baseDir. The feed type
// decides whether full records or the inventory subset are persisted.
func NewFileStorage(baseDir, vendorKey, feedType string, log *logrus.Entry) *FileStorage {
	return &FileStorage{
		path:     filepath.Join(baseDir, vendorKey+".json"),
		feedType: feedType,
		log:      log.WithField("component", "file_storage"),
	}
}

// SaveFeed appends entities to the in-memory batch.
func (s *FileStorage) SaveFeed(_ context.Context, items []*feed.Item) error {
	s.mu.Lock()
	s.items = append(s.items, items...)
	s.mu.Unlock()
	return nil
}

// Shutdown writes the accumulated feed to disk.
func (s *FileStorage) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload any = s.items
	if s.feedType != "" && s.feedType != feed.FeedTypeProduct {
		payload = toInventory(s.items)
	}

	data, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: encoding feed: %v", utils.ErrStorage, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: creating output dir: %v", utils.ErrStorage, err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", utils.ErrStorage, s.path, err)
	}

	s.log.WithFields(logrus.Fields{"path": s.path, "items": len(s.items)}).Info("Feed written")
	return nil
}

// toInventory flattens groups and keeps only the inventory fields.
func toInventory(items []*feed.Item) []inventoryItem {
	var out []inventoryItem
	for _, it := range items {
		if it.IsGroup {
			out = append(out, toInventory(it.ChildProducts)...)
			continue
		}
		out = append(out, inventoryItem{
			ProductCode: it.ProductCode,
			Mpn:         it.Mpn,
			CostToUs:    it.CostToUs,
			ListPrice:   it.ListPrice,
			RAvail:      it.RAvail,
			Forsale:     it.Forsale,
			MinAmount:   it.MinAmount,
		})
	}
	return out
}
