// Package checkpoint persists per-year Buckets as JSON artifacts with
// timestamped backup snapshots, giving the pipeline its resumability: a run
// that dies loses at most the Records since the last save.
package checkpoint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/regharvest/fedresurs-cli/internal/model"
)

// Store reads and writes Bucket artifacts under dir. Each run gets its own
// backup directory so snapshots from different runs never collide.
type Store struct {
	dir       string
	backupDir string
}

// New creates a Store rooted at dir with backups under backupRoot. The
// per-run backup directory is named by start time plus a short run id.
func New(dir, backupRoot string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "checkpoint: create dir %s", dir)
	}

	runDir := filepath.Join(backupRoot, fmt.Sprintf("%s-%s",
		time.Now().Format("2006-01-02T15-04-05"),
		uuid.New().String()[:8],
	))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "checkpoint: create backup dir %s", runDir)
	}

	return &Store{dir: dir, backupDir: runDir}, nil
}

// Open returns a read-only view of an existing artifact directory. No
// backup directory is created; Backup is a no-op best avoided on an opened
// Store.
func Open(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the artifact path for a bucket id.
func (s *Store) Path(bucketID string) string {
	return filepath.Join(s.dir, bucketID+".json")
}

// BackupDir returns this run's snapshot directory.
func (s *Store) BackupDir() string { return s.backupDir }

// Load returns the persisted Bucket, or an empty one when the artifact is
// absent or unreadable. Corruption is a warning, never fatal: the pipeline
// re-fetches what the artifact would have covered.
func (s *Store) Load(bucketID string) model.Bucket {
	data, err := os.ReadFile(s.Path(bucketID))
	if err != nil {
		if !os.IsNotExist(err) {
			zap.L().Warn("unreadable bucket artifact, starting fresh",
				zap.String("bucket", bucketID), zap.Error(err))
		}
		return model.Bucket{}
	}

	var bucket model.Bucket
	if err := json.Unmarshal(data, &bucket); err != nil {
		zap.L().Warn("corrupt bucket artifact, starting fresh",
			zap.String("bucket", bucketID), zap.Error(err))
		return model.Bucket{}
	}
	if bucket == nil {
		bucket = model.Bucket{}
	}
	return bucket
}

// Save atomically persists the full Bucket: the in-memory state is
// authoritative and written back wholesale via temp file + rename.
func (s *Store) Save(bucketID string, bucket model.Bucket) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bucket); err != nil {
		return eris.Wrapf(err, "checkpoint: encode bucket %s", bucketID)
	}

	path := s.Path(bucketID)
	tmp, err := os.CreateTemp(s.dir, bucketID+"-*.json.tmp")
	if err != nil {
		return eris.Wrapf(err, "checkpoint: create temp file for %s", bucketID)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return eris.Wrapf(err, "checkpoint: write temp file for %s", bucketID)
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "checkpoint: close temp file for %s", bucketID)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrapf(err, "checkpoint: rename into %s", path)
	}
	return nil
}

// Backup copies the current artifact into this run's snapshot directory,
// replacing the bucket's previous snapshot within the run. A missing
// artifact is a no-op.
func (s *Store) Backup(bucketID string) error {
	data, err := os.ReadFile(s.Path(bucketID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return eris.Wrapf(err, "checkpoint: read artifact for backup %s", bucketID)
	}

	dst := filepath.Join(s.backupDir, bucketID+".json")
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return eris.Wrapf(err, "checkpoint: write backup %s", dst)
	}
	return nil
}

// Buckets lists the persisted bucket ids in ascending order.
func (s *Store) Buckets() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, eris.Wrapf(err, "checkpoint: list %s", s.dir)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
