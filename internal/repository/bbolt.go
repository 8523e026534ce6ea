package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/NamanBalaji/ravenmagnet/internal/asset"
	"github.com/NamanBalaji/ravenmagnet/internal/logger"
	"github.com/NamanBalaji/ravenmagnet/pkg/magnet"
)

const (
	linksBucket    = "links"
	metadataBucket = "metadata"
	schemaVersion  = 1

	defaultTimeout = 1 * time.Second
)

var (
	// ErrLinkNotFound is returned when no link exists for an asset
	ErrLinkNotFound = errors.New("link not found")
	// ErrAssetExists is returned when an asset name has already been issued
	ErrAssetExists = errors.New("asset already issued")
)

// BboltRepository implements Repository on a bbolt file.
type BboltRepository struct {
	db *bbolt.DB
}

var _ Repository = (*BboltRepository)(nil)

// NewBboltRepository opens or creates the ledger at dbPath. A zero timeout
// uses the default lock timeout.
func NewBboltRepository(dbPath string, timeout time.Duration) (*BboltRepository, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	options := &bbolt.Options{
		Timeout: timeout,
	}

	db, err := bbolt.Open(dbPath, 0o600, options)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &BboltRepository{
		db: db,
	}

	if err := repo.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debugf("Opened link ledger %s", dbPath)

	return repo, nil
}

// initialize sets up buckets and schema
func (r *BboltRepository) initialize() error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(linksBucket))
		if err != nil {
			return fmt.Errorf("failed to create links bucket: %w", err)
		}

		metadataBucket, err := tx.CreateBucketIfNotExists([]byte(metadataBucket))
		if err != nil {
			return fmt.Errorf("failed to create metadata bucket: %w", err)
		}

		versionBytes := []byte(fmt.Sprintf("%d", schemaVersion))
		err = metadataBucket.Put([]byte("schema_version"), versionBytes)
		if err != nil {
			return fmt.Errorf("failed to store schema version: %w", err)
		}

		return nil
	})
}

// Save stores a new link. Asset names are unique: issuing the same name
// twice fails with ErrAssetExists.
func (r *BboltRepository) Save(link *Link) error {
	if link == nil {
		return errors.New("cannot save nil link")
	}

	if link.ID == uuid.Nil {
		return errors.New("link ID cannot be empty")
	}

	if link.Asset == "" {
		return errors.New("link asset cannot be empty")
	}

	if _, err := magnet.ParseRecord(link.Record[:]); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(linksBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", linksBucket)
		}

		key := []byte(link.Asset)
		if bucket.Get(key) != nil {
			return fmt.Errorf("%w: %s", ErrAssetExists, link.Asset)
		}

		data, err := json.Marshal(link)
		if err != nil {
			return fmt.Errorf("failed to marshal link: %w", err)
		}

		err = bucket.Put(key, data)
		if err != nil {
			return fmt.Errorf("failed to save link: %w", err)
		}

		return nil
	})
}

// Find retrieves a link by its full asset name
func (r *BboltRepository) Find(assetName string) (*Link, error) {
	if assetName == "" {
		return nil, errors.New("asset name cannot be empty")
	}

	var link *Link
	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(linksBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", linksBucket)
		}

		data := bucket.Get([]byte(assetName))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrLinkNotFound, assetName)
		}

		var err error
		link, err = unmarshalLink(data)
		return err
	})

	if err != nil {
		return nil, err
	}

	return link, nil
}

// FindByParent retrieves every link issued under parent (MAIN/SUB) in key
// order.
func (r *BboltRepository) FindByParent(parent string) ([]*Link, error) {
	if parent == "" {
		return nil, errors.New("parent asset cannot be empty")
	}

	prefix := []byte(parent + asset.UniqueDelimiter)
	var links []*Link

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(linksBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", linksBucket)
		}

		c := bucket.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			link, err := unmarshalLink(v)
			if err != nil {
				return err
			}

			links = append(links, link)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return links, nil
}

// FindAll retrieves all links
func (r *BboltRepository) FindAll() ([]*Link, error) {
	var links []*Link

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(linksBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", linksBucket)
		}

		return bucket.ForEach(func(k, v []byte) error {
			link, err := unmarshalLink(v)
			if err != nil {
				return err
			}

			links = append(links, link)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return links, nil
}

// Delete removes a link
func (r *BboltRepository) Delete(assetName string) error {
	if assetName == "" {
		return errors.New("asset name cannot be empty")
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(linksBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", linksBucket)
		}

		if bucket.Get([]byte(assetName)) == nil {
			return fmt.Errorf("%w: %s", ErrLinkNotFound, assetName)
		}

		return bucket.Delete([]byte(assetName))
	})
}

// Close closes the database
func (r *BboltRepository) Close() error {
	return r.db.Close()
}

func unmarshalLink(data []byte) (*Link, error) {
	link := &Link{}

	if err := json.Unmarshal(data, link); err != nil {
		return nil, fmt.Errorf("failed to unmarshal link: %w", err)
	}

	return link, nil
}
