package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rpgo/bizplan/internal/domain"
)

// ErrRunNotFound is returned by Get for unknown run IDs.
var ErrRunNotFound = errors.New("run not found")

// createdAtLayout is fixed-width so that text ordering matches time ordering.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 20

// RunSummary is one row of the archive listing.
type RunSummary struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	PlanName  string    `json:"plan_name"`
	CreatedAt time.Time `json:"created_at"`
	NPV       string    `json:"npv,omitempty"`
}

// Run is an archived report with its metadata.
type Run struct {
	RunSummary
	Report *domain.Report `json:"report"`
}

// Store archives plan reports in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New wraps an already migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Open opens the database at dbPath and applies migrations.
func Open(dbPath string) (*Store, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return New(db), nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a report and returns its generated run ID.
func (s *Store) Save(ctx context.Context, kind, planName string, report *domain.Report) (string, error) {
	if report == nil {
		return "", fmt.Errorf("save run: report is nil")
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	var npv sql.NullString
	if report.Baseline != nil {
		npv = sql.NullString{String: report.Baseline.NPV.StringFixed(2), Valid: true}
	}

	id := uuid.New().String()
	createdAt := s.now().UTC().Format(createdAtLayout)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, plan_name, created_at, npv, report_json) VALUES (?, ?, ?, ?, ?, ?)`,
		id, kind, planName, createdAt, npv, string(payload),
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// List returns the most recent runs first.
func (s *Store) List(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, plan_name, created_at, npv FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			r         RunSummary
			createdAt string
			npv       sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Kind, &r.PlanName, &createdAt, &npv); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
			return nil, fmt.Errorf("run %s: parse created_at: %w", r.ID, err)
		}
		r.NPV = npv.String
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Get loads one archived run with its full report.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	var (
		run       Run
		createdAt string
		npv       sql.NullString
		payload   string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, kind, plan_name, created_at, npv, report_json FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Kind, &run.PlanName, &createdAt, &npv, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", id, err)
	}

	if run.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
		return nil, fmt.Errorf("run %s: parse created_at: %w", id, err)
	}
	run.NPV = npv.String
	run.Report = &domain.Report{}
	if err := json.Unmarshal([]byte(payload), run.Report); err != nil {
		return nil, fmt.Errorf("run %s: decode report: %w", id, err)
	}
	return &run, nil
}
