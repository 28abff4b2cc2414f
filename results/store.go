// Package results keeps a history of policy evaluations
// in a SQLite database.
package results

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultPath is where the CLI keeps its database.
const DefaultPath = "~/.doom/results.db"

// Eval is the outcome of evaluating a policy.
type Eval struct {
	ID int64

	// Run names the training run, usually after the
	// saved model.
	Run string

	// Env is the ID of the evaluated environment.
	Env string

	// Steps is the number of training timesteps done
	// before the evaluation.
	Steps int

	Episodes   int
	MeanReward float64
	StdReward  float64

	CreatedAt time.Time
}

// Store is an open results database.
type Store struct {
	db *sql.DB
}

// Open opens or creates a database.
// A leading ~ in the path means the home directory.
func Open(path string) (*Store, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("results: expand home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("results: create directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("results: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("results: connect to database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("results: migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS evals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run TEXT NOT NULL,
			env TEXT NOT NULL,
			steps INTEGER NOT NULL,
			episodes INTEGER NOT NULL,
			mean_reward REAL NOT NULL,
			std_reward REAL NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_evals_run ON evals(run, steps);
	`)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveEval records an evaluation and sets its ID.
func (s *Store) SaveEval(e *Eval) error {
	res, err := s.db.Exec(
		`INSERT INTO evals (run, env, steps, episodes, mean_reward, std_reward)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Run, e.Env, e.Steps, e.Episodes, e.MeanReward, e.StdReward,
	)
	if err != nil {
		return fmt.Errorf("results: save eval: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("results: save eval: %w", err)
	}
	return nil
}

// Best returns the evaluation of a run with the highest
// mean reward, or nil if the run has none.
func (s *Store) Best(run string) (*Eval, error) {
	evals, err := s.query(
		`SELECT id, run, env, steps, episodes, mean_reward, std_reward, created_at
		 FROM evals WHERE run = ?
		 ORDER BY mean_reward DESC, steps ASC LIMIT 1`,
		run,
	)
	if err != nil || len(evals) == 0 {
		return nil, err
	}
	return evals[0], nil
}

// History returns the latest evaluations of a run, oldest
// first.
// If limit is not positive, every evaluation is returned.
func (s *Store) History(run string, limit int) ([]*Eval, error) {
	if limit <= 0 {
		limit = -1
	}
	evals, err := s.query(
		`SELECT id, run, env, steps, episodes, mean_reward, std_reward, created_at
		 FROM evals WHERE run = ?
		 ORDER BY steps DESC, id DESC LIMIT ?`,
		run, limit,
	)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(evals)-1; i < j; i, j = i+1, j-1 {
		evals[i], evals[j] = evals[j], evals[i]
	}
	return evals, nil
}

// Runs returns the names of all runs, sorted.
func (s *Store) Runs() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT run FROM evals ORDER BY run`)
	if err != nil {
		return nil, fmt.Errorf("results: query runs: %w", err)
	}
	defer rows.Close()
	var res []string
	for rows.Next() {
		var run string
		if err := rows.Scan(&run); err != nil {
			return nil, fmt.Errorf("results: scan run: %w", err)
		}
		res = append(res, run)
	}
	return res, rows.Err()
}

func (s *Store) query(query string, args ...any) ([]*Eval, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("results: query evals: %w", err)
	}
	defer rows.Close()

	var res []*Eval
	for rows.Next() {
		e := &Eval{}
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Run, &e.Env, &e.Steps, &e.Episodes,
			&e.MeanReward, &e.StdReward, &createdAt); err != nil {
			return nil, fmt.Errorf("results: scan eval: %w", err)
		}
		switch v := createdAt.(type) {
		case time.Time:
			e.CreatedAt = v
		case string:
			if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
				e.CreatedAt = parsed
			}
		}
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("results: iterate evals: %w", err)
	}
	return res, nil
}
