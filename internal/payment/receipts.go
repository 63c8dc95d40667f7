package payment

import (
	"path/filepath"
	"sync"

	bolt "go.etcd.io/bbolt"
)

// ReceiptStore remembers which orderId+paymentId pairs were already
// applied, so a retried verify call never grants a plan twice.
type ReceiptStore interface {
	Seen(key string) (bool, error)
	Record(key string) error
	Close() error
}

var receiptBucket = []byte("payment_receipts")

// boltReceiptStore persists receipts in a bbolt file under the workdir,
// surviving restarts between a payment and its retry.
type boltReceiptStore struct {
	db *bolt.DB
}

func NewBoltReceiptStore(dataDir string) (ReceiptStore, error) {
	db, err := bolt.Open(filepath.Join(dataDir, "receipts.db"), 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(receiptBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltReceiptStore{db: db}, nil
}

func (s *boltReceiptStore) Seen(key string) (bool, error) {
	var seen bool
	err := s.db.View(func(tx *bolt.Tx) error {
		seen = tx.Bucket(receiptBucket).Get([]byte(key)) != nil
		return nil
	})
	return seen, err
}

func (s *boltReceiptStore) Record(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(receiptBucket).Put([]byte(key), []byte{1})
	})
}

func (s *boltReceiptStore) Close() error {
	return s.db.Close()
}

// MemoryReceiptStore is an in process ReceiptStore for tests
type MemoryReceiptStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func NewMemoryReceiptStore() *MemoryReceiptStore {
	return &MemoryReceiptStore{keys: make(map[string]bool)}
}

func (s *MemoryReceiptStore) Seen(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *MemoryReceiptStore) Record(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = true
	return nil
}

func (s *MemoryReceiptStore) Close() error { return nil }
