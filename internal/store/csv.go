package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// CSVStore keeps every table as a header-row CSV file under Dir.
type CSVStore struct {
	Dir string
}

func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{Dir: dir}
}

func (s *CSVStore) path(name string) string {
	return filepath.Join(s.Dir, name)
}

func (s *CSVStore) ReadTable(name string) ([]Row, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		for i, field := range header {
			if i < len(rec) {
				row[field] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteTable rewrites the whole table through a temp file and a rename,
// so a failed write never truncates the previous content.
func (s *CSVStore) WriteTable(name string, rows []Row, fields []string) error {
	tmp, err := os.CreateTemp(s.Dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(fields); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	for _, row := range rows {
		if err := w.Write(recordOf(row, fields)); err != nil {
			tmp.Close()
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (s *CSVStore) AppendRow(name string, row Row, fields []string) error {
	_, statErr := os.Stat(s.path(name))
	missing := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(s.path(name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("append %s: %w", name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if missing {
		if err := w.Write(fields); err != nil {
			return fmt.Errorf("append %s: %w", name, err)
		}
	}
	if err := w.Write(recordOf(row, fields)); err != nil {
		return fmt.Errorf("append %s: %w", name, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("append %s: %w", name, err)
	}
	return f.Close()
}

func recordOf(row Row, fields []string) []string {
	rec := make([]string, len(fields))
	for i, field := range fields {
		rec[i] = row[field]
	}
	return rec
}
