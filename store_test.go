package ramjet

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMetadata() Metadata {
	return Metadata{
		Craft:     IoRamBeta,
		Step:      1,
		Epoch:     time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		Constants: DefaultConstants(),
	}
}

func testSnapshots(n int) []Snapshot {
	snaps := make([]Snapshot, n)
	for i := range snaps {
		snaps[i] = Snapshot{
			Step:       uint64(i),
			Time:       float64(i),
			ProperTime: float64(i) * 0.5,
			JD:         2451545 + float64(i)/Day,
			Previews: map[string]Preview{
				"tank":      {"fuel": 10 - 0.1*float64(i), "capacity": 10},
				"spacetime": {"pos_x": 1 + float64(i*i), "gamma": 1},
			},
		}
	}
	return snaps
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	meta := testMetadata()
	s, err := NewStore(path, meta)
	require.NoError(t, err)
	assert.Zero(t, s.Buffered(), "metadata should be written immediately")

	snaps := testSnapshots(20)
	for _, snap := range snaps {
		require.NoError(t, s.Record(snap))
	}
	assert.NotZero(t, s.Buffered())
	require.NoError(t, s.Close())
	assert.Zero(t, s.Buffered())

	gotMeta, gotSnaps, err := ReadStore(path)
	require.NoError(t, err)
	assert.Equal(t, meta.Craft, gotMeta.Craft)
	assert.True(t, meta.Epoch.Equal(gotMeta.Epoch))
	assert.Equal(t, meta.Constants, gotMeta.Constants)
	assert.Equal(t, snaps, gotSnaps)
}

func TestStoreFlushThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	s, err := NewStore(path, testMetadata())
	require.NoError(t, err)
	s.FlushBytes = 1
	for i, snap := range testSnapshots(5) {
		require.NoError(t, s.Record(snap))
		assert.Zero(t, s.Buffered(), "record %d was not flushed", i)
	}
	_, snaps, err := s.Replay()
	require.NoError(t, err)
	assert.Len(t, snaps, 5)
}

func TestStoreTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("not a recording\n"), 0644))
	s, err := NewStore(path, testMetadata())
	require.NoError(t, err)
	require.NoError(t, s.Record(testSnapshots(1)[0]))
	require.NoError(t, s.Close())

	_, snaps, err := ReadStore(path)
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestStoreNonFinite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	s, err := NewStore(path, testMetadata())
	require.NoError(t, err)
	snap := Snapshot{Step: 1, Previews: map[string]Preview{"spacetime": {"gamma": math.Inf(1), "speed": SpeedOfLight, "bad": math.NaN()}}}
	require.NoError(t, s.Record(snap))
	_, snaps, err := s.Replay()
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, Preview{"speed": SpeedOfLight}, snaps[0].Previews["spacetime"])
	// The recorded snapshot is left untouched.
	assert.True(t, math.IsInf(snap.Previews["spacetime"]["gamma"], 1))
}

func TestReadStoreErrors(t *testing.T) {
	dir := t.TempDir()
	_, _, err := ReadStore(filepath.Join(dir, "missing.jsonl"))
	assert.Error(t, err)

	path := filepath.Join(dir, "garbage.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"craft\":{}}\n{\"step\":"), 0644))
	_, _, err = ReadStore(path)
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore(testMetadata())
	var rec Recorder = m
	for _, snap := range testSnapshots(3) {
		require.NoError(t, rec.Record(snap))
	}
	require.NoError(t, rec.Close())
	meta, snaps, err := m.Replay()
	require.NoError(t, err)
	assert.Equal(t, IoRamBeta.Name, meta.Craft.Name)
	assert.Equal(t, testSnapshots(3), snaps)
}

func TestSeries(t *testing.T) {
	snaps := testSnapshots(4)
	delete(snaps[2].Previews["tank"], "fuel")
	times, values := Series(snaps, "tank", "fuel")
	assert.Equal(t, []float64{0, 1, 3}, times)
	assert.InDeltaSlice(t, []float64{10, 9.9, 9.7}, values, 1e-12)

	times, values = Series(snaps, "scoop", "area")
	assert.Empty(t, times)
	assert.Empty(t, values)
}
