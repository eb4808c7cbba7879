package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"bedrock-chatter/internal/fsutil"
	"bedrock-chatter/internal/logger"
)

// ErrCorruptSnapshot is returned by Load when the snapshot cannot be decoded.
var ErrCorruptSnapshot = errors.New("corrupt conversation snapshot")

type format int

const (
	formatJSON format = iota
	formatYAML
)

// Snapshot is the on-disk copy of the whole store: a mapping from user id to
// its ordered turns. The encoding follows the file extension (.yaml/.yml or JSON).
type Snapshot struct {
	path    string
	format  format
	recover bool
	now     func() time.Time
}

// NewSnapshot binds a snapshot to path. With recoverCorrupt set, an
// undecodable file is moved aside and loading continues with an empty store.
func NewSnapshot(path string, recoverCorrupt bool) *Snapshot {
	f := formatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		f = formatYAML
	}
	return &Snapshot{path: path, format: f, recover: recoverCorrupt, now: time.Now}
}

func (s *Snapshot) Path() string { return s.path }

// Load reads the snapshot. A missing file yields an empty mapping.
func (s *Snapshot) Load() (map[string][]Turn, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string][]Turn), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}

	out, err := s.decode(data)
	if err == nil {
		return out, nil
	}
	if !s.recover {
		return nil, fmt.Errorf("%w %s: %v", ErrCorruptSnapshot, s.path, err)
	}

	aside := fmt.Sprintf("%s.corrupt-%d", s.path, s.now().Unix())
	if rerr := os.Rename(s.path, aside); rerr != nil {
		return nil, fmt.Errorf("move corrupt snapshot aside: %w", rerr)
	}
	logger.Warn("corrupt snapshot moved aside, starting empty", "path", s.path, "moved_to", aside, "error", err)
	return make(map[string][]Turn), nil
}

func (s *Snapshot) decode(data []byte) (map[string][]Turn, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty file")
	}
	var out map[string][]Turn
	switch s.format {
	case formatYAML:
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, err
		}
	}
	if out == nil {
		out = make(map[string][]Turn)
	}
	for id, ts := range out {
		if len(ts) == 0 {
			// a user is only known once a turn is recorded
			delete(out, id)
			continue
		}
		for i, t := range ts {
			if !t.Role.Valid() {
				return nil, fmt.Errorf("user %s turn %d: unknown role %q", id, i, t.Role)
			}
		}
	}
	return out, nil
}

// Write replaces the snapshot file atomically.
func (s *Snapshot) Write(sessions map[string][]Turn) error {
	var (
		data []byte
		err  error
	)
	switch s.format {
	case formatYAML:
		data, err = yaml.Marshal(sessions)
	default:
		data, err = json.MarshalIndent(sessions, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := fsutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", s.path, err)
	}
	return nil
}
