// Package session holds the rows of one import between parse and commit.
package session

import (
	"time"

	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/model"
)

// Store is an ordered, editable list of rows addressed by row ID.
// A Store belongs to a single import session and is not safe for concurrent use.
type Store struct {
	rows []*model.EditableRow
	ids  *id.Generator
}

// NewStore creates an empty Store. A nil clock means time.Now.
func NewStore(now func() time.Time) *Store {
	return &Store{ids: id.NewGenerator(now)}
}

// FromParsed replaces the contents with copies of raw, IDs "row-0", "row-1", ...
func (s *Store) FromParsed(raw []model.RawRow) {
	s.rows = make([]*model.EditableRow, 0, len(raw))
	for i, r := range raw {
		rowID := id.FormatRowID(i)
		s.ids.Reserve(rowID)
		s.rows = append(s.rows, model.NewEditableRow(rowID, r))
	}
}

// SetField replaces one field on the row with rowID. It reports whether the
// row exists; a missing row is left alone.
func (s *Store) SetField(rowID string, f model.Field, value string) bool {
	row := s.find(rowID)
	if row == nil {
		return false
	}
	row.Fields[f] = value
	return true
}

// AddRow appends a blank row with status "completed" and returns its ID.
func (s *Store) AddRow() string {
	row := &model.EditableRow{
		ID:     s.ids.Next(),
		Fields: map[model.Field]string{model.FieldStatus: string(model.StatusCompleted)},
	}
	for _, f := range model.AllFields() {
		if _, ok := row.Fields[f]; !ok {
			row.Fields[f] = ""
		}
	}
	s.rows = append(s.rows, row)
	return row.ID
}

// DeleteRow removes the row with rowID and reports whether it existed.
func (s *Store) DeleteRow(rowID string) bool {
	for i, row := range s.rows {
		if row.ID == rowID {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns a copy of the row with rowID.
func (s *Store) Get(rowID string) (*model.EditableRow, bool) {
	row := s.find(rowID)
	if row == nil {
		return nil, false
	}
	return row.Clone(), true
}

// Rows returns copies of every row in display order.
func (s *Store) Rows() []*model.EditableRow {
	out := make([]*model.EditableRow, len(s.rows))
	for i, row := range s.rows {
		out[i] = row.Clone()
	}
	return out
}

// Len returns the number of rows.
func (s *Store) Len() int { return len(s.rows) }

// Clear drops every row. Issued IDs stay reserved.
func (s *Store) Clear() {
	s.rows = nil
}

func (s *Store) find(rowID string) *model.EditableRow {
	for _, row := range s.rows {
		if row.ID == rowID {
			return row
		}
	}
	return nil
}
