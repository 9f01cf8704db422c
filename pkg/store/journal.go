package store

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
)

// Journal durably records stored facts so they survive a restart.
type Journal interface {
	Append(*StoredFact) error
	// Replay calls fn with every recorded fact, oldest first.
	Replay(fn func(*StoredFact) error) error
	Close() error
}

var factsBucket = []byte("facts")

// BoltJournal keeps facts in a bolt bucket keyed by an increasing sequence
// number, so iteration order is insertion order.
type BoltJournal struct {
	db *bolt.DB
}

var _ Journal = &BoltJournal{}

func OpenBoltJournal(path string) (*BoltJournal, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening journal %s", path)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(factsBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating facts bucket")
	}
	return &BoltJournal{db: db}, nil
}

func (j *BoltJournal) Append(sf *StoredFact) error {
	value, err := json.Marshal(sf)
	if err != nil {
		return errors.Wrap(err, "encoding fact")
	}
	return j.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(factsBucket)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		return bucket.Put(encodeSeq(seq), value)
	})
}

func (j *BoltJournal) Replay(fn func(*StoredFact) error) error {
	return j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(factsBucket).ForEach(func(key, value []byte) error {
			sf := &StoredFact{}
			if err := json.Unmarshal(value, sf); err != nil {
				return errors.Wrapf(err, "decoding fact %d", binary.BigEndian.Uint64(key))
			}
			return fn(sf)
		})
	})
}

// Len is the number of recorded facts.
func (j *BoltJournal) Len() (int, error) {
	count := 0
	err := j.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(factsBucket).Stats().KeyN
		return nil
	})
	return count, err
}

func (j *BoltJournal) Close() error {
	return j.db.Close()
}

func encodeSeq(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
