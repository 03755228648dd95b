package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketRuns = []byte("runs")

// PageRecord is the archived form of a single page result.
type PageRecord struct {
	URL       string         `json:"url"`
	Title     string         `json:"title,omitempty"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Depth     int            `json:"depth"`
	ParentURL string         `json:"parent_url,omitempty"`
	Links     []string       `json:"links,omitempty"`
	CrawlTime time.Duration  `json:"crawl_time"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// RunRecord is one completed crawl run as stored in the archive.
type RunRecord struct {
	ID          string       `json:"id"`
	Seed        string       `json:"seed"`
	Strategy    string       `json:"strategy"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt time.Time    `json:"completed_at"`
	Pages       []PageRecord `json:"pages"`
}

// Archive persists finished crawl runs in a BoltDB file so they can be
// re-aggregated later. It stores completed results only; it is not a
// resume mechanism.
type Archive struct {
	db   *bolt.DB
	path string
}

// OpenArchive opens (or creates) an archive at the given path.
func OpenArchive(path string) (*Archive, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRuns)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Archive{db: db, path: path}, nil
}

// SaveRun stores a completed run. If the record has no ID, one is
// assigned from the start timestamp.
func (a *Archive) SaveRun(run *RunRecord) error {
	if run.ID == "" {
		run.ID = run.StartedAt.UTC().Format("20060102T150405.000000000")
	}

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	return a.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		if b == nil {
			return fmt.Errorf("runs bucket not found")
		}
		return b.Put([]byte(run.ID), data)
	})
}

// LoadRun retrieves a run by ID. It returns nil without error when the
// ID is unknown.
func (a *Archive) LoadRun(id string) (*RunRecord, error) {
	var run *RunRecord

	err := a.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		if b == nil {
			return fmt.Errorf("runs bucket not found")
		}
		data := b.Get([]byte(id))
		if data == nil {
			return nil
		}
		run = &RunRecord{}
		return json.Unmarshal(data, run)
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// LatestRun returns the most recently stored run, or nil when the
// archive is empty. Run IDs sort chronologically, so the last key wins.
func (a *Archive) LatestRun() (*RunRecord, error) {
	var run *RunRecord

	err := a.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		if b == nil {
			return fmt.Errorf("runs bucket not found")
		}
		_, data := b.Cursor().Last()
		if data == nil {
			return nil
		}
		run = &RunRecord{}
		return json.Unmarshal(data, run)
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the IDs of all stored runs in chronological order.
func (a *Archive) ListRuns() ([]string, error) {
	ids := make([]string, 0)

	err := a.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		if b == nil {
			return fmt.Errorf("runs bucket not found")
		}
		return b.ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}
