// Package csv loads the transaction table from CSV.
package csv

import (
	"context"
	enccsv "encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"basket-rules/core/determinism"
	"basket-rules/core/types"
	"basket-rules/internal/errors"
	"basket-rules/internal/logging"
)

// Required column names, matched case-insensitively.
const (
	ColumnUserID     = "UserId"
	ColumnServiceID  = "ServiceId"
	ColumnCategoryID = "CategoryId"
	ColumnCreateDate = "CreateDate"
)

var requiredColumns = []string{ColumnUserID, ColumnServiceID, ColumnCategoryID, ColumnCreateDate}

// DateLayouts are tried in order after Options.DateLayout.
var DateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Options controls CSV loading.
type Options struct {
	// DateLayout is tried before DateLayouts when set.
	DateLayout string

	// SkipInvalid turns malformed rows into warnings instead of failing the load.
	SkipInvalid bool

	// Delimiter defaults to ','.
	Delimiter rune
}

// DefaultOptions returns strict comma-separated loading.
func DefaultOptions() Options {
	return Options{Delimiter: ','}
}

// Warning describes a skipped row.
type Warning struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Report summarizes a load.
type Report struct {
	// Rows is the number of non-blank data rows read
	Rows int `json:"rows"`

	// Loaded is the number of transactions returned
	Loaded int `json:"loaded"`

	// Skipped is the number of rows dropped with SkipInvalid
	Skipped int `json:"skipped"`

	Warnings []Warning `json:"warnings,omitempty"`

	// InputHash fingerprints the raw bytes read
	InputHash determinism.ContentHash `json:"-"`
}

// Loader reads transactions from CSV.
type Loader struct {
	opts Options
}

// NewLoader creates a loader
func NewLoader(opts Options) *Loader {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	return &Loader{opts: opts}
}

// LoadFile opens path and loads it.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]types.Transaction, *Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(errors.TypeInput, err, "open transactions file %s", path)
	}
	defer f.Close()

	txs, report, err := l.Load(ctx, f)
	if err != nil {
		return nil, report, err
	}
	logging.Info("Loaded transactions",
		zap.String("path", path),
		zap.Int("rows", report.Rows),
		zap.Int("loaded", report.Loaded),
		zap.Int("skipped", report.Skipped))
	return txs, report, nil
}

// Load reads a header row and then one transaction per row.
func (l *Loader) Load(ctx context.Context, r io.Reader) ([]types.Transaction, *Report, error) {
	hr := determinism.NewHashingReader(r)
	reader := enccsv.NewReader(hr)
	reader.Comma = l.opts.Delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	report := &Report{}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, report, errors.Input("transactions input is empty")
	}
	if err != nil {
		return nil, report, errors.Parsing("failed to read header row", err).WithContext("line", 1)
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, report, err
	}

	var txs []types.Transaction
	lineNum := 1
	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if lineNum%10000 == 0 {
			if cerr := ctx.Err(); cerr != nil {
				return nil, report, cerr
			}
		}
		if err != nil {
			report.Rows++
			if !l.skip(report, lineNum, err) {
				return nil, report, errors.Parsing("failed to read record", err).WithContext("line", lineNum)
			}
			continue
		}
		if isBlank(record) {
			continue
		}
		report.Rows++

		tx, perr := l.parseRecord(record, columns)
		if perr != nil {
			if !l.skip(report, lineNum, perr) {
				return nil, report, perr.WithContext("line", lineNum)
			}
			continue
		}
		txs = append(txs, tx)
	}

	report.Loaded = len(txs)
	report.InputHash = hr.Sum()

	if report.Rows > 0 && report.Loaded == 0 {
		return nil, report, errors.Newf(errors.TypeParsing, "no valid transactions in %d rows", report.Rows)
	}
	if report.Skipped > 0 {
		logging.Warn("Skipped malformed transaction rows", zap.Int("skipped", report.Skipped))
	}
	return txs, report, nil
}

func (l *Loader) skip(report *Report, line int, err error) bool {
	if !l.opts.SkipInvalid {
		return false
	}
	report.Skipped++
	report.Warnings = append(report.Warnings, Warning{Line: line, Message: err.Error()})
	return true
}

func mapColumns(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
		}
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	columns := make(map[string]int, len(requiredColumns))
	for _, col := range requiredColumns {
		i, ok := index[strings.ToLower(col)]
		if !ok {
			return nil, errors.Newf(errors.TypeInput, "missing required column: %s", col).WithContext("line", 1)
		}
		columns[col] = i
	}
	return columns, nil
}

func (l *Loader) parseRecord(record []string, columns map[string]int) (types.Transaction, *errors.Error) {
	var tx types.Transaction
	var perr *errors.Error

	if tx.UserID, perr = parseInt(record, columns, ColumnUserID); perr != nil {
		return tx, perr
	}
	if tx.ServiceID, perr = parseInt(record, columns, ColumnServiceID); perr != nil {
		return tx, perr
	}
	if tx.CategoryID, perr = parseInt(record, columns, ColumnCategoryID); perr != nil {
		return tx, perr
	}

	raw := field(record, columns, ColumnCreateDate)
	date, err := l.parseDate(raw)
	if err != nil {
		return tx, errors.Parsing(fmt.Sprintf("invalid %s %q", ColumnCreateDate, raw), err).
			WithContext("column", ColumnCreateDate)
	}
	tx.CreateDate = date
	return tx, nil
}

func (l *Loader) parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty value")
	}
	layouts := DateLayouts
	if l.opts.DateLayout != "" {
		layouts = append([]string{l.opts.DateLayout}, DateLayouts...)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no known layout matches")
}

func parseInt(record []string, columns map[string]int, column string) (int, *errors.Error) {
	raw := field(record, columns, column)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Parsing(fmt.Sprintf("invalid %s %q", column, raw), err).WithContext("column", column)
	}
	return n, nil
}

func field(record []string, columns map[string]int, column string) string {
	i := columns[column]
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
