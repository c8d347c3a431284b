package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// fileRecord is the on-disk layout of a snapshot.
type fileRecord struct {
	Subjects []Subject                  `json:"subjects"`
	Schedule map[string]json.RawMessage `json:"schedule"`
}

// FilePersister stores snapshots as a single UTF-8 JSON document.
type FilePersister struct {
	path string
}

// NewFilePersister returns a persister for the JSON file at path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// Path returns the backing file path.
func (p *FilePersister) Path() string {
	return p.path
}

// Load reads the snapshot file. A missing file yields ErrNoSnapshot and
// undecodable content yields a *MalformedError.
func (p *FilePersister) Load(ctx context.Context) (Snapshot, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", p.path, err)
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return Snapshot{}, &MalformedError{Source: p.path, Err: err}
	}
	return snap, nil
}

// Save writes snap to a temporary file in the same directory and renames it
// over the target.
func (p *FilePersister) Save(ctx context.Context, snap Snapshot) error {
	data, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	dir := filepath.Dir(p.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, p.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmpName, err)
	}
	return nil
}

// EncodeSnapshot renders snap in the storage layout: subjects as an ordered
// list and the schedule keyed by day. Present empty days encode as [].
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	rec := struct {
		Subjects []Subject        `json:"subjects"`
		Schedule map[Day][]string `json:"schedule"`
	}{
		Subjects: snap.Subjects,
		Schedule: make(map[Day][]string, len(snap.Schedule)),
	}
	if rec.Subjects == nil {
		rec.Subjects = []Subject{}
	}
	for d, keys := range snap.Schedule {
		if keys == nil {
			keys = []string{}
		}
		rec.Schedule[d] = keys
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot parses the storage layout.
//
// Subjects without a key or name are skipped. Schedule entries whose value is
// not a list of strings are skipped. Day keys are passed through unchecked;
// Store.Load filters them.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Subjects: make([]Subject, 0, len(rec.Subjects)),
		Schedule: make(map[Day][]string, len(rec.Schedule)),
	}
	for _, s := range rec.Subjects {
		if s.Key == "" || s.Name == "" {
			continue
		}
		snap.Subjects = append(snap.Subjects, s)
	}
	for day, raw := range rec.Schedule {
		var keys []string
		if err := json.Unmarshal(raw, &keys); err != nil {
			continue
		}
		if keys == nil {
			keys = []string{}
		}
		snap.Schedule[Day(day)] = keys
	}
	return snap, nil
}
