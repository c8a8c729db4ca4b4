package store

import "fmt"

// MemoryStore keeps tables in memory. It backs the tests and anything
// that wants throwaway state, with the same semantics as CSVStore.
type MemoryStore struct {
	tables map[string][]Row
	fields map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[string][]Row),
		fields: make(map[string][]string),
	}
}

func (s *MemoryStore) ReadTable(name string) ([]Row, error) {
	rows, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	out := make([]Row, len(rows))
	for i, row := range rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out[i] = cp
	}
	return out, nil
}

func (s *MemoryStore) WriteTable(name string, rows []Row, fields []string) error {
	stored := make([]Row, len(rows))
	for i, row := range rows {
		stored[i] = projectRow(row, fields)
	}
	s.tables[name] = stored
	s.fields[name] = fields
	return nil
}

func (s *MemoryStore) AppendRow(name string, row Row, fields []string) error {
	if _, ok := s.tables[name]; !ok {
		s.tables[name] = nil
		s.fields[name] = fields
	}
	s.tables[name] = append(s.tables[name], projectRow(row, s.fields[name]))
	return nil
}

func projectRow(row Row, fields []string) Row {
	cp := make(Row, len(fields))
	for _, field := range fields {
		cp[field] = row[field]
	}
	return cp
}
