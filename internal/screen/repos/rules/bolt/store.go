package bolt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bbolt "go.etcd.io/bbolt"

	"github.com/haukened/callgate/internal/screen/domain"
	"github.com/haukened/callgate/internal/screen/repos/rules"
)

var (
	bucketNumbers   = []byte("numbers")
	bucketPatterns  = []byte("patterns")
	bucketCountries = []byte("countries")
	bucketContacts  = []byte("contacts")
	bucketEvents    = []byte("events")
	bucketMeta      = []byte("meta")
)

var allBuckets = [][]byte{
	bucketNumbers, bucketPatterns, bucketCountries,
	bucketContacts, bucketEvents, bucketMeta,
}

// boltStore implements rules.Store using bbolt. One bucket per rule
// category, one for block events, one for metadata. Record values are
// JSON; keys are the category's unique key.
type boltStore struct {
	db *bbolt.DB
}

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string) (rules.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func (s *boltStore) Close() error { return s.db.Close() }

// put marshals a record and writes it under key in bucket.
func (s *boltStore) put(bucket, key []byte, record any) error {
	v, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put(key, v)
	})
}

func (s *boltStore) delete(bucket, key []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Delete(key)
	})
}

func (s *boltStore) PutNumber(n domain.BlockedNumber) error {
	return s.put(bucketNumbers, []byte(n.Digits), n)
}

func (s *boltStore) DeleteNumber(digits string) error {
	return s.delete(bucketNumbers, []byte(digits))
}

func (s *boltStore) GetNumber(digits string) (domain.BlockedNumber, bool, error) {
	var n domain.BlockedNumber
	var present bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketNumbers).Get([]byte(digits))
		if v == nil {
			return nil
		}
		present = true
		return json.Unmarshal(v, &n)
	})
	if err != nil {
		return domain.BlockedNumber{}, false, err
	}
	return n, present, nil
}

func (s *boltStore) ListNumbers() ([]domain.BlockedNumber, error) {
	var out []domain.BlockedNumber
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketNumbers).ForEach(func(_, v []byte) error {
			var n domain.BlockedNumber
			if err := json.Unmarshal(v, &n); err != nil {
				return err
			}
			out = append(out, n)
			return nil
		})
	})
	return out, err
}

func (s *boltStore) PutPattern(p domain.BlockPattern) error {
	return s.put(bucketPatterns, p.ID[:], p)
}

func (s *boltStore) DeletePattern(id uuid.UUID) error {
	return s.delete(bucketPatterns, id[:])
}

func (s *boltStore) ListPatterns() ([]domain.BlockPattern, error) {
	var out []domain.BlockPattern
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPatterns).ForEach(func(_, v []byte) error {
			var p domain.BlockPattern
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			out = append(out, p)
			return nil
		})
	})
	return out, err
}

func (s *boltStore) PutCountry(c domain.BlockedCountry) error {
	return s.put(bucketCountries, []byte(c.Prefix), c)
}

func (s *boltStore) DeleteCountry(prefix string) error {
	return s.delete(bucketCountries, []byte(prefix))
}

func (s *boltStore) ListCountries() ([]domain.BlockedCountry, error) {
	var out []domain.BlockedCountry
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCountries).ForEach(func(_, v []byte) error {
			var c domain.BlockedCountry
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			out = append(out, c)
			return nil
		})
	})
	return out, err
}

func (s *boltStore) PutContact(c domain.WhitelistContact) error {
	return s.put(bucketContacts, []byte(c.Digits), c)
}

func (s *boltStore) DeleteContact(digits string) error {
	return s.delete(bucketContacts, []byte(digits))
}

func (s *boltStore) ListContacts() ([]domain.WhitelistContact, error) {
	var out []domain.WhitelistContact
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketContacts).ForEach(func(_, v []byte) error {
			var c domain.WhitelistContact
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			out = append(out, c)
			return nil
		})
	})
	return out, err
}

// AppendEvent writes a block event keyed by its timestamp plus a bucket
// sequence number, so events within the same nanosecond keep insertion
// order and never collide.
func (s *boltStore) AppendEvent(ev domain.BlockEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	v, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEvents)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 16)
		binary.BigEndian.PutUint64(key[:8], uint64(ev.At.UnixNano()))
		binary.BigEndian.PutUint64(key[8:], seq)
		return b.Put(key, v)
	})
}

func (s *boltStore) VisitEvents(since time.Time, visit func(domain.BlockEvent) bool) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketEvents).Cursor()
		seek := make([]byte, 8)
		binary.BigEndian.PutUint64(seek, uint64(since.UnixNano()))
		for k, v := c.Seek(seek); k != nil; k, v = c.Next() {
			var ev domain.BlockEvent
			if err := json.Unmarshal(v, &ev); err != nil {
				return fmt.Errorf("corrupt block event %x: %w", k, err)
			}
			if !visit(ev) {
				return nil
			}
		}
		return nil
	})
}

func (s *boltStore) SetMeta(version uint64, updatedUnix int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		vbuf := make([]byte, 8)
		ubuf := make([]byte, 8)
		binary.BigEndian.PutUint64(vbuf, version)
		binary.BigEndian.PutUint64(ubuf, uint64(updatedUnix))
		if err := b.Put([]byte("version"), vbuf); err != nil {
			return err
		}
		return b.Put([]byte("updated"), ubuf)
	})
}

func (s *boltStore) Stats() rules.StoreStats {
	st := rules.StoreStats{}
	_ = s.db.View(func(tx *bbolt.Tx) error {
		st.Numbers = uint64(tx.Bucket(bucketNumbers).Stats().KeyN)
		st.Patterns = uint64(tx.Bucket(bucketPatterns).Stats().KeyN)
		st.Countries = uint64(tx.Bucket(bucketCountries).Stats().KeyN)
		st.Contacts = uint64(tx.Bucket(bucketContacts).Stats().KeyN)
		st.Events = uint64(tx.Bucket(bucketEvents).Stats().KeyN)
		b := tx.Bucket(bucketMeta)
		if v := b.Get([]byte("version")); len(v) == 8 {
			st.Version = binary.BigEndian.Uint64(v)
		}
		if v := b.Get([]byte("updated")); len(v) == 8 {
			st.UpdatedUnix = int64(binary.BigEndian.Uint64(v))
		}
		return nil
	})
	return st
}
