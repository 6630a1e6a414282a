package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/dgraph-io/badger/v4"
)

const appName = "moveorder"

const keyTables = "history_tables"

// snapshot is the JSON-serializable form of Tables. The in-memory tables use
// fixed arrays for lookup speed; the snapshot flattens them to slices so
// encoding/json doesn't choke on deeply nested array types.
type snapshot struct {
	Noisy  []int16 `json:"noisy"`
	Quiet  []int16 `json:"quiet"`
	Contin []int16 `json:"contin"`
}

// Store persists history tables across engine runs in an embedded BadgerDB
// database, the same way the teacher's storage package persists user
// preferences and game statistics.
type Store struct {
	db *badger.DB
}

// dataDir returns the platform-specific data directory for the engine,
// following the same XDG/AppData/Application-Support convention the
// teacher's storage package uses.
func dataDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support")

	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, "AppData", "Roaming")
		}

	default:
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, ".local", "share")
		}
	}

	dir := filepath.Join(baseDir, appName, "history")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// OpenStore opens (creating if necessary) the default on-disk history
// database.
func OpenStore() (*Store, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, err
	}
	return OpenStoreAt(dir)
}

// OpenStoreAt opens the history database rooted at dir, bypassing the
// platform-specific default directory. Tests use this to point the store at
// a temp directory.
func OpenStoreAt(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save persists the noisy, quiet, and continuation tables of t. The
// continuation stack is not saved: it records in-progress search state, not
// learned history, and starts empty on the next run regardless.
func (s *Store) Save(t *Tables) error {
	snap := snapshot{
		Noisy:  flattenNoisy(&t.Noisy),
		Quiet:  flattenQuiet(&t.Quiet),
		Contin: flattenContin(&t.Contin),
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyTables), data)
	})
}

// Load populates t's noisy, quiet, and continuation tables from the store.
// If no snapshot has been saved yet, t is left untouched and Load returns
// nil.
func (s *Store) Load(t *Tables) error {
	var snap snapshot
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyTables))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})
	if err != nil {
		return err
	}
	if snap.Noisy == nil {
		return nil
	}

	unflattenNoisy(&t.Noisy, snap.Noisy)
	unflattenQuiet(&t.Quiet, snap.Quiet)
	unflattenContin(&t.Contin, snap.Contin)
	return nil
}

func flattenNoisy(h *NoisyHistory) []int16 {
	out := make([]int16, 0, len(h.table)*len(h.table[0])*len(h.table[0][0])*len(h.table[0][0][0]))
	for t := range h.table {
		for i := range h.table[t] {
			for j := range h.table[t][i] {
				out = append(out, h.table[t][i][j][:]...)
			}
		}
	}
	return out
}

// tail returns data[idx:], or nil once idx has run past the end — a
// snapshot from an older build with smaller tables leaves the rest zeroed
// rather than panicking.
func tail(data []int16, idx int) []int16 {
	if idx >= len(data) {
		return nil
	}
	return data[idx:]
}

func unflattenNoisy(h *NoisyHistory, data []int16) {
	idx := 0
	for t := range h.table {
		for i := range h.table[t] {
			for j := range h.table[t][i] {
				idx += copy(h.table[t][i][j][:], tail(data, idx))
			}
		}
	}
}

func flattenQuiet(h *QuietHistory) []int16 {
	out := make([]int16, 0, len(h.table)*len(h.table[0])*len(h.table[0][0])*len(h.table[0][0][0]))
	for i := range h.table {
		for j := range h.table[i] {
			for k := range h.table[i][j] {
				out = append(out, h.table[i][j][k][:]...)
			}
		}
	}
	return out
}

func unflattenQuiet(h *QuietHistory, data []int16) {
	idx := 0
	for i := range h.table {
		for j := range h.table[i] {
			for k := range h.table[i][j] {
				idx += copy(h.table[i][j][k][:], tail(data, idx))
			}
		}
	}
}

func flattenContin(h *ContinuationHistory) []int16 {
	out := make([]int16, 0)
	for s := range h.tables {
		for i := range h.tables[s] {
			for j := range h.tables[s][i] {
				for k := range h.tables[s][i][j] {
					out = append(out, h.tables[s][i][j][k][:]...)
				}
			}
		}
	}
	return out
}

func unflattenContin(h *ContinuationHistory, data []int16) {
	idx := 0
	for s := range h.tables {
		for i := range h.tables[s] {
			for j := range h.tables[s][i] {
				for k := range h.tables[s][i][j] {
					idx += copy(h.tables[s][i][j][k][:], tail(data, idx))
				}
			}
		}
	}
}
