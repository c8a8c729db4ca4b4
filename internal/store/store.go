package store

import "errors"

// ErrTableNotFound is returned by ReadTable when the table does not
// exist yet. Optional-table consumers treat it as an empty table;
// required-table consumers (the menu) surface it.
var ErrTableNotFound = errors.New("table not found")

// Row is one record keyed by field name, values string-encoded.
type Row map[string]string

// RecordStore is the flat-table persistence boundary. WriteTable is a
// full overwrite: it either fully applies or leaves prior content
// intact. AppendRow creates the table with a header when absent.
type RecordStore interface {
	ReadTable(name string) ([]Row, error)
	WriteTable(name string, rows []Row, fields []string) error
	AppendRow(name string, row Row, fields []string) error
}
