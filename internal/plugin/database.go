package plugin

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	settingsBucket = []byte("settings")
	languagesKey   = []byte("languages")
)

// DB persists the user's language choice
type DB interface {
	// GetSettings returns the stored settings, or the defaults if none are stored
	GetSettings() (Settings, error)
	SaveSettings(settings Settings) error
	Close() error
}

// BoltDB keeps Settings as a JSON value in a single bbolt bucket
type BoltDB struct {
	bolt *bbolt.DB
}

// NewBoltDB opens (or creates) the settings file at path
func NewBoltDB(path string) (*BoltDB, error) {
	bolt, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening settings db: %w", err)
	}

	if err := bolt.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(settingsBucket)
		return err
	}); err != nil {
		bolt.Close()
		return nil, fmt.Errorf("creating settings bucket: %w", err)
	}

	return &BoltDB{bolt: bolt}, nil
}

func (b *BoltDB) GetSettings() (Settings, error) {
	settings := DefaultSettings()
	err := b.bolt.View(func(tx *bbolt.Tx) error {
		if raw := tx.Bucket(settingsBucket).Get(languagesKey); raw != nil {
			return json.Unmarshal(raw, &settings)
		}
		return nil
	})
	if err != nil {
		return Settings{}, fmt.Errorf("reading settings: %w", err)
	}
	return settings, nil
}

// SaveSettings overwrites the stored settings
func (b *BoltDB) SaveSettings(settings Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	return b.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(settingsBucket).Put(languagesKey, raw)
	})
}

func (b *BoltDB) Close() error {
	return b.bolt.Close()
}
