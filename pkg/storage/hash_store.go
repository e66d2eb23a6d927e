package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"feed-scraper/pkg/utils"
)

// badgerLogrusAdapter routes badger's internal logging through logrus.
type badgerLogrusAdapter struct {
	entry *logrus.Entry
}

func (a *badgerLogrusAdapter) Errorf(format string, args ...interface{}) {
	a.entry.Errorf(strings.TrimSpace(format), args...)
}

func (a *badgerLogrusAdapter) Warningf(format string, args ...interface{}) {
	a.entry.Warnf(strings.TrimSpace(format), args...)
}

func (a *badgerLogrusAdapter) Infof(format string, args ...interface{}) {
	a.entry.Debugf(strings.TrimSpace(format), args...)
}

func (a *badgerLogrusAdapter) Debugf(format string, args ...interface{}) {
	a.entry.Debugf(strings.TrimSpace(format), args...)
}

// HashStore persists per-product content hashes between runs so unchanged
// products can be skipped. Backed by a badger database under the vendor's
// state directory.
type HashStore struct {
	db  *badger.DB
	log *logrus.Entry
}

// NewHashStore opens (or creates) the hash database for a vendor.
func NewHashStore(stateDir, vendorKey string, log *logrus.Entry) (*HashStore, error) {
	entry := log.WithFields(logrus.Fields{"component": "hash_store", "vendor": vendorKey})
	dbPath := filepath.Join(stateDir, vendorKey, "hashes")

	opts := badger.DefaultOptions(dbPath)
	opts.Logger = &badgerLogrusAdapter{entry: entry.WithField("subsystem", "badger")}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: opening hash store at %s: %v", utils.ErrDatabase, dbPath, err)
	}
	entry.WithField("path", dbPath).Debug("Hash store opened")
	return &HashStore{db: db, log: entry}, nil
}

// Changed reports whether the stored hash for a product differs from the
// given one. Unknown products count as changed.
func (s *HashStore) Changed(productCode, hash string) (bool, error) {
	var stored string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(productCode))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			stored = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("%w: reading hash for %s: %v", utils.ErrDatabase, productCode, err)
	}
	return stored != hash, nil
}

// Put records the current hash for a product, retrying once on a
// transaction conflict.
func (s *HashStore) Put(productCode, hash string) error {
	update := func() error {
		return s.db.Update(func(txn *badger.Txn) error {
			return txn.Set([]byte(productCode), []byte(hash))
		})
	}
	err := update()
	if errors.Is(err, badger.ErrConflict) {
		err = update()
	}
	if err != nil {
		return fmt.Errorf("%w: storing hash for %s: %v", utils.ErrDatabase, productCode, err)
	}
	return nil
}

// Close flushes and closes the database.
func (s *HashStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: closing hash store: %v", utils.ErrDatabase, err)
	}
	return nil
}
