package syncengine

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// reservedDirName is the top-level directory reserved on the SSD mount for
// snapshots, locks, and the sync log.
const reservedDirName = ".ssd-syncer"

// SnapshotStore reads and writes per-machine, per-mapping snapshots and
// appends to the shared sync log, all rooted under <ssdMount>/.ssd-syncer.
type SnapshotStore struct {
	ssdMount string
}

// NewSnapshotStore creates a SnapshotStore rooted at the given SSD mount
// path.
func NewSnapshotStore(ssdMount string) *SnapshotStore {
	return &SnapshotStore{ssdMount: ssdMount}
}

// MappingSlug derives a deterministic, filesystem-safe token from a mapping
// name: lowercase alphanumerics pass through unchanged, every run of other
// characters between them becomes a single "-", leading and trailing
// separators are dropped, and an empty result becomes "mapping".
func MappingSlug(mappingName string) string {
	var b strings.Builder

	lastDash := false

	for _, r := range strings.ToLower(mappingName) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "mapping"
	}

	return slug
}

var unsafeSlugChars = regexp.MustCompile(`[^a-z0-9-]`)

func (s *SnapshotStore) snapshotPath(machine, mapping string) string {
	slug := unsafeSlugChars.ReplaceAllString(MappingSlug(mapping), "")

	return filepath.Join(s.ssdMount, reservedDirName, "snapshots", machine, slug+".json")
}

// snapshotDoc is the on-disk JSON representation of a Snapshot.
type snapshotDoc struct {
	Machine   string              `json:"machine"`
	Mapping   string              `json:"mapping"`
	WrittenAt time.Time           `json:"written_at"`
	State     map[string]entryDoc `json:"state"`
}

type entryDoc struct {
	Size  int64   `json:"size"`
	Mtime int64   `json:"mtime_unix"`
	Hash  *string `json:"hash,omitempty"` // hex-encoded BLAKE3-256, absent if unknown
}

// Load reads the snapshot for (machine, mapping). A missing or unreadable
// file is treated as an empty baseline (first-sync semantics), not an
// error — only a malformed-but-present file is reported as an error.
func (s *SnapshotStore) Load(machine, mapping string) (Snapshot, error) {
	path := s.snapshotPath(machine, mapping)

	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{
			SnapshotHeader: SnapshotHeader{Machine: machine, Mapping: mapping},
			State:          StateMap{},
		}, nil
	}

	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("syncengine: parsing snapshot %q: %w", path, err)
	}

	state := make(StateMap, len(doc.State))

	for relPath, e := range doc.State {
		fs := FileState{Size: e.Size, Mtime: time.Unix(e.Mtime, 0).UTC()}

		if e.Hash != nil {
			decoded, err := hex.DecodeString(*e.Hash)
			if err != nil || len(decoded) != 32 {
				return Snapshot{}, fmt.Errorf("syncengine: decoding hash for %q: %w", relPath, err)
			}

			var h [32]byte
			copy(h[:], decoded)
			fs.Hash = &h
		}

		state[relPath] = fs
	}

	return Snapshot{
		SnapshotHeader: SnapshotHeader{Machine: doc.Machine, Mapping: doc.Mapping, WrittenAt: doc.WrittenAt},
		State:          state,
	}, nil
}

// Store atomically replaces the snapshot for (machine, mapping) with state.
// The previous snapshot is never patched — always fully overwritten via
// temp-file-plus-rename so a crash mid-write never corrupts it.
func (s *SnapshotStore) Store(machine, mapping string, state StateMap, writtenAt time.Time) error {
	doc := snapshotDoc{
		Machine:   machine,
		Mapping:   mapping,
		WrittenAt: writtenAt,
		State:     make(map[string]entryDoc, len(state)),
	}

	for relPath, fs := range state {
		e := entryDoc{Size: fs.Size, Mtime: fs.Mtime.Unix()}

		if fs.Hash != nil {
			h := hex.EncodeToString(fs.Hash[:])
			e.Hash = &h
		}

		doc.State[relPath] = e
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("syncengine: encoding snapshot: %w", err)
	}

	path := s.snapshotPath(machine, mapping)
	if err := atomicWriteFile(path, data); err != nil {
		return fmt.Errorf("syncengine: writing snapshot %q: %w", path, err)
	}

	return nil
}

// AppendLog appends a single line to <ssdMount>/.ssd-syncer/sync.log.
func (s *SnapshotStore) AppendLog(line string) error {
	path := filepath.Join(s.ssdMount, reservedDirName, "sync.log")

	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}

	return appendFile(path, []byte(line))
}

// TailLog returns the last limit lines of the shared sync log, oldest first.
// A missing log (no sync has ever completed) returns an empty slice, not an
// error. limit <= 0 returns every line.
func (s *SnapshotStore) TailLog(limit int) ([]string, error) {
	path := filepath.Join(s.ssdMount, reservedDirName, "sync.log")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, &EnvironmentError{Op: "log-read", Path: path, Err: err}
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}

	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}

	return lines, nil
}

// LockPath returns the path of the advisory lock file for (machine, mapping).
func (s *SnapshotStore) LockPath(machine, mapping string) string {
	slug := unsafeSlugChars.ReplaceAllString(MappingSlug(mapping), "")

	return filepath.Join(s.ssdMount, reservedDirName, "locks", machine+"."+slug+".lock")
}
