package ramjet

import (
	"encoding/json"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// DefaultBatchSize is the number of snapshots a SQLStore buffers before inserting them.
	DefaultBatchSize = 2000
)

// snapshotRow is a Snapshot as stored in the database.
type snapshotRow struct {
	ID         uint   `gorm:"primarykey"`
	Run        string `gorm:"index"`
	Step       uint64 `gorm:"index"`
	Time       float64
	ProperTime float64
	JD         float64
	Previews   datatypes.JSON
}

func (snapshotRow) TableName() string {
	return "snapshots"
}

// runRow is the Metadata of one recorded run.
type runRow struct {
	Name     string `gorm:"primarykey"`
	Metadata datatypes.JSON
}

func (runRow) TableName() string {
	return "runs"
}

// SQLStore records snapshots in a SQLite database, in batches.
// Several runs may share a database, each under its own name.
type SQLStore struct {
	db        *gorm.DB
	run       string
	BatchSize int
	pending   []snapshotRow
}

// NewSQLStore opens (or creates) the SQLite database at the provided path,
// use ":memory:" for an in-memory database, and registers the run.
func NewSQLStore(path, run string, meta Metadata) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        DefaultBatchSize,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("sql store %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql store %s: %w", path, err)
	}
	// A single connection: an in-memory database only lives within its connection.
	sqlDB.SetMaxOpenConns(1)
	if err = registerRun(db, run, meta); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("sql store %s: %w", path, err)
	}
	return &SQLStore{db: db, run: run, BatchSize: DefaultBatchSize}, nil
}

// registerRun migrates the schema, saves the run metadata and clears any
// snapshots previously recorded under the same name.
func registerRun(db *gorm.DB, run string, meta Metadata) error {
	if err := db.AutoMigrate(&runRow{}, &snapshotRow{}); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	marsh, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if err = db.Save(&runRow{Name: run, Metadata: datatypes.JSON(marsh)}).Error; err != nil {
		return fmt.Errorf("saving run %s: %w", run, err)
	}
	// Recording a run again replaces it.
	if err = db.Where("run = ?", run).Delete(&snapshotRow{}).Error; err != nil {
		return fmt.Errorf("clearing run %s: %w", run, err)
	}
	return nil
}

// Record implements the Recorder interface.
func (s *SQLStore) Record(snap Snapshot) error {
	marsh, err := json.Marshal(finite(snap).Previews)
	if err != nil {
		return fmt.Errorf("sql store: encoding step %d: %w", snap.Step, err)
	}
	s.pending = append(s.pending, snapshotRow{
		Run:        s.run,
		Step:       snap.Step,
		Time:       snap.Time,
		ProperTime: snap.ProperTime,
		JD:         snap.JD,
		Previews:   datatypes.JSON(marsh),
	})
	if len(s.pending) >= s.BatchSize {
		return s.Flush()
	}
	return nil
}

// Flush inserts the pending snapshots.
func (s *SQLStore) Flush() error {
	if len(s.pending) == 0 {
		return nil
	}
	if err := s.db.CreateInBatches(s.pending, DefaultBatchSize).Error; err != nil {
		return fmt.Errorf("sql store: inserting %d snapshots: %w", len(s.pending), err)
	}
	s.pending = s.pending[:0]
	return nil
}

// Close implements the Recorder interface.
func (s *SQLStore) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Replay implements the Replayer interface.
func (s *SQLStore) Replay() (Metadata, []Snapshot, error) {
	if err := s.Flush(); err != nil {
		return Metadata{}, nil, err
	}
	return replayRun(s.db, s.run)
}

// ReadSQLStore reads back a run recorded in the SQLite database at the provided path.
func ReadSQLStore(path, run string) (Metadata, []Snapshot, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return Metadata{}, nil, fmt.Errorf("sql store %s: %w", path, err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return replayRun(db, run)
}

func replayRun(db *gorm.DB, run string) (meta Metadata, snaps []Snapshot, err error) {
	var r runRow
	if err = db.First(&r, "name = ?", run).Error; err != nil {
		return meta, nil, fmt.Errorf("sql store: run %s: %w", run, err)
	}
	if err = json.Unmarshal(r.Metadata, &meta); err != nil {
		return meta, nil, fmt.Errorf("sql store: decoding metadata of %s: %w", run, err)
	}
	var rows []snapshotRow
	if err = db.Where("run = ?", run).Order("step").Find(&rows).Error; err != nil {
		return meta, nil, fmt.Errorf("sql store: reading %s: %w", run, err)
	}
	snaps = make([]Snapshot, len(rows))
	for i, row := range rows {
		snaps[i] = Snapshot{Step: row.Step, Time: row.Time, ProperTime: row.ProperTime, JD: row.JD}
		if err = json.Unmarshal(row.Previews, &snaps[i].Previews); err != nil {
			return meta, nil, fmt.Errorf("sql store: decoding step %d of %s: %w", row.Step, run, err)
		}
	}
	return meta, snaps, nil
}
