package storage

import (
	"context"
	"database/sql"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"basket-rules/core/types"
	"basket-rules/internal/errors"
	"basket-rules/internal/logging"
)

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const snapshotColumns = `id, run_id, source, input_hash, min_support, max_len, metric,
    min_threshold, baskets, services, itemsets, rule_count, created_at`

// SQLiteStore keeps snapshots in a single SQLite file
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens or creates the database at path and runs migrations.
// The path ":memory:" opens a private in-memory database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New(errors.TypeConfig, "store path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.Storage("create store directory", err).WithContext("path", path)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Storage("open store", err).WithContext("path", path)
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Storage("open store", err).WithContext("path", path)
	}

	// Run migrations
	if _, err := db.ExecContext(ctx, createTablesSQL); err != nil {
		db.Close()
		return nil, errors.Storage("migrate store", err).WithContext("path", path)
	}

	logging.Debug("Opened snapshot store", zap.String("path", path))
	return &SQLiteStore{db: db, path: path}, nil
}

// Path returns the database file
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := prepare(snap); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Storage("begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO snapshots (`+snapshotColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.RunID, snap.Source, snap.InputHash,
		snap.MinSupport, snap.MaxLen, string(snap.Metric), snap.MinThreshold,
		snap.Baskets, snap.Services, snap.Itemsets, snap.RuleCount,
		snap.CreatedAt.Format(timeLayout))
	if err != nil {
		return errors.Storage("insert snapshot", err).WithContext("id", snap.ID)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO rules (snapshot_id, position,
        antecedents, consequents, antecedent_support, consequent_support,
        support, confidence, lift, leverage, conviction, zhangs_metric)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Storage("prepare rule insert", err)
	}
	defer stmt.Close()

	for i, r := range snap.Rules {
		_, err := stmt.ExecContext(ctx, snap.ID, i,
			r.Antecedents.Key(), r.Consequents.Key(),
			r.AntecedentSupport, r.ConsequentSupport,
			r.Support, r.Confidence, r.Lift, r.Leverage,
			nullableFloat(r.Conviction), r.ZhangsMetric)
		if err != nil {
			return errors.Storage("insert rule", err).WithContext("id", snap.ID).WithContext("position", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Storage("commit snapshot", err).WithContext("id", snap.ID)
	}

	logging.Info("Saved snapshot",
		zap.String("id", snap.ID),
		zap.Int("rules", snap.RuleCount))
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+snapshotColumns+` FROM snapshots WHERE id = ?`, id)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("snapshot", id)
	}
	if err != nil {
		return nil, errors.Storage("read snapshot", err).WithContext("id", id)
	}

	rules, err := s.rules(ctx, id)
	if err != nil {
		return nil, err
	}
	snap.Rules = rules
	return snap, nil
}

func (s *SQLiteStore) rules(ctx context.Context, id string) ([]types.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT antecedents, consequents,
        antecedent_support, consequent_support, support, confidence,
        lift, leverage, conviction, zhangs_metric
        FROM rules WHERE snapshot_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, errors.Storage("read rules", err).WithContext("id", id)
	}
	defer rows.Close()

	rules := []types.Rule{}
	for rows.Next() {
		var (
			r          types.Rule
			ante, cons string
			conviction sql.NullFloat64
		)
		err := rows.Scan(&ante, &cons,
			&r.AntecedentSupport, &r.ConsequentSupport, &r.Support, &r.Confidence,
			&r.Lift, &r.Leverage, &conviction, &r.ZhangsMetric)
		if err != nil {
			return nil, errors.Storage("scan rule", err).WithContext("id", id)
		}
		r.Antecedents = types.ParseItemset(ante)
		r.Consequents = types.ParseItemset(cons)
		r.Conviction = math.Inf(1)
		if conviction.Valid {
			r.Conviction = conviction.Float64
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("read rules", err).WithContext("id", id)
	}
	return rules, nil
}

func (s *SQLiteStore) Latest(ctx context.Context) (*Snapshot, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM snapshots ORDER BY created_at DESC, id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("snapshot", "latest")
	}
	if err != nil {
		return nil, errors.Storage("read latest snapshot", err)
	}
	return s.Get(ctx, id)
}

func (s *SQLiteStore) List(ctx context.Context, filter *ListFilter) ([]*Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM snapshots WHERE 1=1`
	var args []interface{}

	if filter != nil {
		if filter.InputHash != "" {
			query += " AND input_hash = ?"
			args = append(args, filter.InputHash)
		}
		if !filter.Since.IsZero() {
			query += " AND created_at >= ?"
			args = append(args, filter.Since.UTC().Format(timeLayout))
		}
	}

	query += " ORDER BY created_at DESC, id DESC"
	if filter != nil && (filter.Limit > 0 || filter.Offset > 0) {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Storage("list snapshots", err)
	}
	defer rows.Close()

	var out []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, errors.Storage("scan snapshot", err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("list snapshots", err)
	}
	return out, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Storage("begin transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return errors.Storage("delete snapshot", err).WithContext("id", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("snapshot", id)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rules WHERE snapshot_id = ?`, id); err != nil {
		return errors.Storage("delete rules", err).WithContext("id", id)
	}

	if err := tx.Commit(); err != nil {
		return errors.Storage("commit delete", err).WithContext("id", id)
	}
	logging.Info("Deleted snapshot", zap.String("id", id))
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row scanner) (*Snapshot, error) {
	var (
		snap      Snapshot
		runID     sql.NullString
		source    sql.NullString
		inputHash sql.NullString
		metric    string
		created   string
	)
	err := row.Scan(&snap.ID, &runID, &source, &inputHash,
		&snap.MinSupport, &snap.MaxLen, &metric, &snap.MinThreshold,
		&snap.Baskets, &snap.Services, &snap.Itemsets, &snap.RuleCount, &created)
	if err != nil {
		return nil, err
	}
	snap.RunID = runID.String
	snap.Source = source.String
	snap.InputHash = inputHash.String
	snap.Metric = types.Metric(strings.ToLower(metric))

	snap.CreatedAt, err = time.Parse(timeLayout, created)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// nullableFloat maps infinities and NaN to SQL NULL.
func nullableFloat(f float64) sql.NullFloat64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}
