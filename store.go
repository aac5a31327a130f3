package ramjet

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"
)

const (
	// DefaultFlushBytes is the buffered size above which a Store writes to disk.
	DefaultFlushBytes = 1 << 30
)

// Snapshot is the state of a craft after a given step.
type Snapshot struct {
	Step       uint64             `json:"step"`
	Time       float64            `json:"sim_time"`    // simulated (coordinate) time in s
	ProperTime float64            `json:"proper_time"` // onboard time in s
	JD         float64            `json:"jd"`          // Julian date of the coordinate time
	Previews   map[string]Preview `json:"previews"`
}

// Metadata describes a recorded simulation.
type Metadata struct {
	Craft     Blueprint `json:"craft"`
	Step      float64   `json:"step"` // seconds per step
	Epoch     time.Time `json:"epoch"`
	Constants Constants `json:"constants"`
}

// Recorder receives every snapshot of a simulation.
type Recorder interface {
	Record(s Snapshot) error
	Close() error
}

// Replayer returns a recording in the order it was recorded.
type Replayer interface {
	Replay() (Metadata, []Snapshot, error)
}

// Store appends snapshots, one JSON object per line, after a metadata line.
// Snapshots are buffered and written out when the buffer exceeds FlushBytes.
// The first write truncates the file, subsequent ones append to it.
type Store struct {
	path       string
	FlushBytes int
	buf        bytes.Buffer
	enc        *json.Encoder
	firstWrite bool
}

// NewStore returns a new Store writing to the provided path, and
// immediately writes out the metadata.
func NewStore(path string, meta Metadata) (*Store, error) {
	s := &Store{path: path, FlushBytes: DefaultFlushBytes, firstWrite: true}
	s.enc = json.NewEncoder(&s.buf)
	if err := s.enc.Encode(meta); err != nil {
		return nil, fmt.Errorf("store %s: encoding metadata: %w", path, err)
	}
	if err := s.Flush(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the path of the file.
func (s *Store) Path() string {
	return s.path
}

// Buffered returns the number of bytes not yet written to disk.
func (s *Store) Buffered() int {
	return s.buf.Len()
}

// Record implements the Recorder interface.
// Non finite quantities (e.g. the Lorentz factor at c) are not recorded.
func (s *Store) Record(snap Snapshot) error {
	if err := s.enc.Encode(finite(snap)); err != nil {
		return fmt.Errorf("store %s: encoding step %d: %w", s.path, snap.Step, err)
	}
	if s.buf.Len() > s.FlushBytes {
		return s.Flush()
	}
	return nil
}

// Flush writes out the buffered snapshots.
func (s *Store) Flush() error {
	flag := os.O_WRONLY | os.O_CREATE | os.O_APPEND
	if s.firstWrite {
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(s.path, flag, 0644)
	if err != nil {
		return fmt.Errorf("store %s: %w", s.path, err)
	}
	defer f.Close()
	if _, err := s.buf.WriteTo(f); err != nil {
		return fmt.Errorf("store %s: writing: %w", s.path, err)
	}
	s.firstWrite = false
	return f.Sync()
}

// Close implements the Recorder interface.
func (s *Store) Close() error {
	return s.Flush()
}

// Replay implements the Replayer interface.
func (s *Store) Replay() (Metadata, []Snapshot, error) {
	if err := s.Flush(); err != nil {
		return Metadata{}, nil, err
	}
	return ReadStore(s.path)
}

// ReadStore reads back a file written by a Store.
func ReadStore(path string) (meta Metadata, snaps []Snapshot, err error) {
	f, err := os.Open(path)
	if err != nil {
		return meta, nil, fmt.Errorf("store %s: %w", path, err)
	}
	defer f.Close()
	dec := json.NewDecoder(bufio.NewReader(f))
	if err = dec.Decode(&meta); err != nil {
		return meta, nil, fmt.Errorf("store %s: decoding metadata: %w", path, err)
	}
	for {
		var snap Snapshot
		if err = dec.Decode(&snap); err != nil {
			if err == io.EOF {
				return meta, snaps, nil
			}
			return meta, snaps, fmt.Errorf("store %s: decoding record %d: %w", path, len(snaps), err)
		}
		snaps = append(snaps, snap)
	}
}

// MemoryStore keeps the time series in memory.
type MemoryStore struct {
	meta      Metadata
	Snapshots []Snapshot
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(meta Metadata) *MemoryStore {
	return &MemoryStore{meta: meta}
}

// Record implements the Recorder interface.
func (m *MemoryStore) Record(snap Snapshot) error {
	m.Snapshots = append(m.Snapshots, snap)
	return nil
}

// Close implements the Recorder interface.
func (m *MemoryStore) Close() error {
	return nil
}

// Replay implements the Replayer interface.
func (m *MemoryStore) Replay() (Metadata, []Snapshot, error) {
	return m.meta, m.Snapshots, nil
}

// finite returns a copy of the snapshot without NaN or infinite quantities,
// which JSON cannot represent.
func finite(snap Snapshot) Snapshot {
	out := snap
	out.Previews = make(map[string]Preview, len(snap.Previews))
	for name, preview := range snap.Previews {
		p := make(Preview, len(preview))
		for k, v := range preview {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			p[k] = v
		}
		out.Previews[name] = p
	}
	return out
}

// Series extracts one quantity of one component from a time series.
// Snapshots missing the quantity are skipped.
func Series(snaps []Snapshot, component, key string) (times, values []float64) {
	for _, snap := range snaps {
		if v, ok := snap.Previews[component][key]; ok {
			times = append(times, snap.Time)
			values = append(values, v)
		}
	}
	return
}
