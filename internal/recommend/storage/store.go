// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when no stored model matches a request.
var ErrNotFound = errors.New("model not found")

const fileSuffix = ".gob.gz"

// Metadata describes one stored model file.
type Metadata struct {
	// Name groups versions of the same model, e.g. "factorization".
	Name string `json:"name"`

	// Version is monotonically increasing per name.
	Version int `json:"version"`

	TrainedAt time.Time `json:"trained_at"`
	SavedAt   time.Time `json:"saved_at"`

	UserCount  int `json:"user_count"`
	MovieCount int `json:"movie_count"`
	LatentDim  int `json:"latent_dim"`

	// Loss and ValLoss are the final epoch losses.
	Loss    float64 `json:"loss"`
	ValLoss float64 `json:"val_loss"`

	// Checksum is the SHA-256 of the uncompressed gob payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size.
	SizeBytes int64 `json:"size_bytes"`
}

// storedFile is the on-disk layout: metadata plus a gzip-compressed gob payload.
type storedFile struct {
	Metadata       Metadata
	CompressedData []byte
}

// Store persists gob-encoded models as {name}_v{version}.gob.gz files.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// latest version per name
	versions map[string]int
}

// NewStore opens or creates a model directory and indexes existing files.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &Store{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}

	files, err := s.scan()
	if err != nil {
		return nil, fmt.Errorf("scan existing models: %w", err)
	}
	for name, versions := range files {
		s.versions[name] = slices.Max(versions)
	}
	return s, nil
}

// scan lists stored versions per name.
func (s *Store) scan() (map[string][]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, version, ok := parseModelFilename(entry.Name())
		if !ok {
			continue
		}
		out[name] = append(out[name], version)
	}
	return out, nil
}

// parseModelFilename splits "factorization_v3.gob.gz" into its name and version.
func parseModelFilename(filename string) (name string, version int, ok bool) {
	base, found := strings.CutSuffix(filename, fileSuffix)
	if !found {
		return "", 0, false
	}
	idx := strings.LastIndex(base, "_v")
	if idx < 1 {
		return "", 0, false
	}
	version, err := strconv.Atoi(base[idx+2:])
	if err != nil || version < 1 {
		return "", 0, false
	}
	return base[:idx], version, true
}

// Save gob-encodes data and writes it with meta under name and version.
// The file is written to a temporary path and renamed into place.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) Save(ctx context.Context, name string, version int, data any, meta Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if version < 1 {
		return fmt.Errorf("version must be positive, got %d", version)
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(data); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	hash := sha256.Sum256(raw.Bytes())

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	meta.Name = name
	meta.Version = version
	meta.Checksum = hex.EncodeToString(hash[:])
	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	final := s.modelPath(name, version)
	tmp, err := os.CreateTemp(s.baseDir, ".tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }() //nolint:errcheck // no-op after a successful rename

	if err := gob.NewEncoder(tmp).Encode(storedFile{Metadata: meta, CompressedData: compressed.Bytes()}); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error already being returned
		return fmt.Errorf("write model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close model file: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return fmt.Errorf("install model file: %w", err)
	}

	if version > s.versions[name] {
		s.versions[name] = version
	}
	return nil
}

// Load decodes the model stored under name and version into target.
// Version 0 selects the latest version.
func (s *Store) Load(ctx context.Context, name string, version int, target any) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		latest, ok := s.versions[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		version = latest
	}

	sf, err := s.readFile(name, version)
	if err != nil {
		return nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &sf.Metadata, nil
}

// LatestVersion returns the newest version stored under name.
func (s *Store) LatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	version, ok := s.versions[name]
	return version, ok
}

// List returns metadata of every stored file, newest first within a name.
// Unreadable files are skipped.
func (s *Store) List(ctx context.Context) ([]Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.scan()
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)

	var out []Metadata
	for _, name := range names {
		versions := files[name]
		slices.Sort(versions)
		slices.Reverse(versions)
		for _, v := range versions {
			sf, err := s.readFile(name, v)
			if err != nil {
				continue
			}
			out = append(out, sf.Metadata)
		}
	}
	return out, nil
}

// Delete removes one stored version.
func (s *Store) Delete(ctx context.Context, name string, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.modelPath(name, version)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s v%d", ErrNotFound, name, version)
		}
		return fmt.Errorf("delete model: %w", err)
	}
	return s.refreshLocked(name)
}

// Prune keeps the newest keepVersions files under name and removes the rest.
// It returns the number of files removed.
func (s *Store) Prune(ctx context.Context, name string, keepVersions int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if keepVersions < 1 {
		keepVersions = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.scan()
	if err != nil {
		return 0, fmt.Errorf("read directory: %w", err)
	}
	versions := files[name]
	slices.Sort(versions)
	slices.Reverse(versions)

	removed := 0
	for _, v := range versions[min(keepVersions, len(versions)):] {
		if err := os.Remove(s.modelPath(name, v)); err == nil {
			removed++
		}
	}
	return removed, s.refreshLocked(name)
}

// refreshLocked recomputes the latest version of name from disk.
func (s *Store) refreshLocked(name string) error {
	files, err := s.scan()
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}
	if versions := files[name]; len(versions) > 0 {
		s.versions[name] = slices.Max(versions)
	} else {
		delete(s.versions, name)
	}
	return nil
}

func (s *Store) readFile(name string, version int) (*storedFile, error) {
	f, err := os.Open(s.modelPath(name, version)) //nolint:gosec // path is built from the store directory and a parsed name
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s v%d", ErrNotFound, name, version)
		}
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return &sf, nil
}

func (s *Store) modelPath(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", name, version, fileSuffix))
}
