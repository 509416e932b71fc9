package csv

import (
	"context"
	"io"

	"basket-rules/core/types"
)

// FileSource reads transactions from a CSV file on disk.
type FileSource struct {
	Path   string
	Loader *Loader

	report *Report
}

// NewFileSource creates a file source
func NewFileSource(path string, opts Options) *FileSource {
	return &FileSource{Path: path, Loader: NewLoader(opts)}
}

// Name returns the file path
func (s *FileSource) Name() string {
	return s.Path
}

// Transactions loads the file.
func (s *FileSource) Transactions(ctx context.Context) ([]types.Transaction, string, error) {
	txs, report, err := s.Loader.LoadFile(ctx, s.Path)
	s.report = report
	if err != nil {
		return nil, "", err
	}
	return txs, report.InputHash.Hex(), nil
}

// Report returns the last load report, or nil before loading.
func (s *FileSource) Report() *Report {
	return s.report
}

// ReaderSource reads transactions from an open stream, such as stdin.
type ReaderSource struct {
	name   string
	r      io.Reader
	loader *Loader
}

// NewReaderSource creates a stream source
func NewReaderSource(name string, r io.Reader, opts Options) *ReaderSource {
	return &ReaderSource{name: name, r: r, loader: NewLoader(opts)}
}

// Name returns the stream name
func (s *ReaderSource) Name() string {
	return s.name
}

// Transactions loads the stream.
func (s *ReaderSource) Transactions(ctx context.Context) ([]types.Transaction, string, error) {
	txs, report, err := s.loader.Load(ctx, s.r)
	if err != nil {
		return nil, "", err
	}
	return txs, report.InputHash.Hex(), nil
}
