// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package learn persists confirmed term→mesh associations and feeds them
// back into local match scoring.
//
// Learning is purely additive: confirmations only ever raise a record's
// weight, and there is no retraction operation. The weight cap bounds the
// effect of a wrong confirmation, and confirming the correct mesh outranks
// it on subsequent queries.
package learn

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/anatomy-mapper/pkg/types"
)

// WeightCap bounds a learning record's stored weight so repeated
// confirmations cannot dominate scoring.
const WeightCap = 5.0

// Store accumulates learning records, in SQLite when a database path is
// configured and in memory otherwise. Reads are safe concurrently; writes
// are serialized through a single mutex.
type Store struct {
	mu  sync.RWMutex
	db  *sql.DB
	mem map[recordKey]float64
}

type recordKey struct {
	term string
	side types.Side
	mesh string
}

// Open creates a learning store. An empty DBPath selects the in-memory
// store, which is valid for single-process deployments and tests.
func Open(cfg types.LearningConfig) (*Store, error) {
	s := &Store{mem: map[recordKey]float64{}}
	if cfg.DBPath == "" {
		return s, nil
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening learning database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS learned_matches (
		term TEXT NOT NULL,
		side TEXT NOT NULL,
		mesh TEXT NOT NULL,
		weight REAL NOT NULL,
		PRIMARY KEY (term, side, mesh)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating learning schema: %w", err)
	}

	s.db = db
	return s, nil
}

// Close releases the database connection, if any.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Confirm records that term/side correctly resolved to mesh, incrementing
// the record's weight up to WeightCap. Identical repeat confirmations
// increment rather than duplicate. Returns the new weight.
func (s *Store) Confirm(term string, side types.Side, mesh string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		_, err := s.db.Exec(
			`INSERT INTO learned_matches (term, side, mesh, weight) VALUES (?, ?, ?, 1)
			 ON CONFLICT(term, side, mesh) DO UPDATE SET weight = min(weight + 1, ?)`,
			term, string(side), mesh, WeightCap,
		)
		if err != nil {
			return 0, fmt.Errorf("recording learned match: %w", err)
		}
		return s.weightLocked(term, side, mesh)
	}

	key := recordKey{term: term, side: side, mesh: mesh}
	w := s.mem[key] + 1
	if w > WeightCap {
		w = WeightCap
	}
	s.mem[key] = w
	return w, nil
}

// Weight returns the accumulated weight for (term, side, mesh), or zero
// when nothing has been learned.
func (s *Store) Weight(term string, side types.Side, mesh string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, _ := s.weightLocked(term, side, mesh)
	return w
}

func (s *Store) weightLocked(term string, side types.Side, mesh string) (float64, error) {
	if s.db == nil {
		return s.mem[recordKey{term: term, side: side, mesh: mesh}], nil
	}

	var w float64
	err := s.db.QueryRow(
		`SELECT weight FROM learned_matches WHERE term = ? AND side = ? AND mesh = ?`,
		term, string(side), mesh,
	).Scan(&w)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading learned weight: %w", err)
	}
	return w, nil
}

// Records lists every learning record for a term/side, for inspection and
// export. Order is unspecified.
func (s *Store) Records(term string, side types.Side) ([]types.LearningRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		var records []types.LearningRecord
		for key, w := range s.mem {
			if key.term == term && key.side == side {
				records = append(records, types.LearningRecord{
					Term: key.term, Side: key.side, Mesh: key.mesh, Weight: w,
				})
			}
		}
		return records, nil
	}

	rows, err := s.db.Query(
		`SELECT mesh, weight FROM learned_matches WHERE term = ? AND side = ?`,
		term, string(side),
	)
	if err != nil {
		return nil, fmt.Errorf("listing learned matches: %w", err)
	}
	defer rows.Close()

	var records []types.LearningRecord
	for rows.Next() {
		r := types.LearningRecord{Term: term, Side: side}
		if err := rows.Scan(&r.Mesh, &r.Weight); err != nil {
			return nil, fmt.Errorf("scanning learned match: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
