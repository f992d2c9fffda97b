// Package store connects to the data store and manages the persisted
// policy, runtime record, and decision history.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/barricade-app/barricade/config"
	"github.com/barricade-app/barricade/internal/models"
	"github.com/barricade-app/barricade/internal/timeutil"
)

const (
	configBucket   = "config"
	runtimeBucket  = "runtime"
	decisionBucket = "decisions"
)

// currentKey addresses the singleton config and runtime records.
var currentKey = []byte("current")

var pathToDB string

var errBarricadeRunning = errors.New(
	"is Barricade already running? Only one instance can be active at a time",
)

// Client is a BoltDB database client.
type Client struct {
	*bolt.DB
}

func (c *Client) GetConfig() (*config.Blocker, error) {
	var raw []byte

	err := c.View(func(tx *bolt.Tx) error {
		raw = tx.Bucket([]byte(configBucket)).Get(currentKey)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		return nil, nil
	}

	return coerceConfig(raw), nil
}

func (c *Client) SaveConfig(cfg *config.Blocker) error {
	value, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(configBucket)).Put(currentKey, value)
	})
}

func (c *Client) GetRuntime() (models.Runtime, error) {
	var raw []byte

	err := c.View(func(tx *bolt.Tx) error {
		raw = tx.Bucket([]byte(runtimeBucket)).Get(currentKey)
		return nil
	})
	if err != nil {
		return models.Runtime{}, err
	}

	return coerceRuntime(raw), nil
}

func (c *Client) SaveRuntime(rt models.Runtime) error {
	value, err := json.Marshal(rt)
	if err != nil {
		return err
	}

	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(runtimeBucket)).Put(currentKey, value)
	})
}

func (c *Client) AppendDecision(
	snap models.DecisionSnapshot,
	at time.Time,
) error {
	value, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	return c.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(decisionBucket))

		// several navigations can land within the same instant; the
		// sequence suffix keeps each one addressable
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}

		key := fmt.Sprintf("%s-%08d", timeutil.ToKey(at.UTC()), seq)

		return bucket.Put([]byte(key), value)
	})
}

func (c *Client) GetDecisions(
	startTime, endTime time.Time,
) ([]models.DecisionSnapshot, error) {
	var snaps []models.DecisionSnapshot

	err := c.View(func(tx *bolt.Tx) error {
		cur := tx.Bucket([]byte(decisionBucket)).Cursor()

		min := timeutil.ToKey(startTime.UTC())
		max := decisionRangeEnd(endTime)

		for k, v := cur.Seek(min); k != nil && bytes.Compare(k, max) <= 0; k, v = cur.Next() {
			var snap models.DecisionSnapshot

			if err := json.Unmarshal(v, &snap); err != nil {
				// skip corrupt records instead of failing the report
				continue
			}

			snaps = append(snaps, snap)
		}

		return nil
	})

	return snaps, err
}

func (c *Client) DeleteDecisions(startTime, endTime time.Time) error {
	return c.Update(func(tx *bolt.Tx) error {
		cur := tx.Bucket([]byte(decisionBucket)).Cursor()

		min := timeutil.ToKey(startTime.UTC())
		max := decisionRangeEnd(endTime)

		for k, _ := cur.Seek(min); k != nil && bytes.Compare(k, max) <= 0; k, _ = cur.Next() {
			if err := cur.Delete(); err != nil {
				return err
			}
		}

		return nil
	})
}

// decisionRangeEnd returns the inclusive upper bound for a decision
// range scan, covering every sequence-suffixed key at the end instant.
func decisionRangeEnd(endTime time.Time) []byte {
	return append(timeutil.ToKey(endTime.UTC()), 0xff)
}

func (c *Client) Open() error {
	db, err := openDB(pathToDB)
	if err != nil {
		return err
	}

	*c = Client{
		db,
	}

	return nil
}

// openDB creates or opens a database and locks it.
func openDB(pathToDB string) (*bolt.DB, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(
		pathToDB,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, bolt.ErrDatabaseOpen) ||
			errors.Is(err, bolt.ErrTimeout) {
			return nil, errBarricadeRunning
		}

		return nil, err
	}

	return db, nil
}

// NewClient returns a wrapper to a BoltDB connection.
func NewClient(dbPath string) (*Client, error) {
	pathToDB = dbPath

	db, err := openDB(pathToDB)
	if err != nil {
		return nil, err
	}
	// Create the necessary buckets for storing data if they do not exist already
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{
			configBucket,
			runtimeBucket,
			decisionBucket,
		} {
			_, err = tx.CreateBucketIfNotExists([]byte(name))
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		db,
	}, nil
}
