package model

// Field is a CSV column name understood by the import pipeline.
type Field string

const (
	FieldName          Field = "name"
	FieldAmount        Field = "amount"
	FieldCategory      Field = "category"
	FieldDescription   Field = "description"
	FieldPaymentMethod Field = "payment_method"
	FieldPaymentID     Field = "payment_id"
	FieldDate          Field = "date"
	FieldTime          Field = "time"
	FieldStatus        Field = "status"
)

// RequiredFields must appear in every import header.
var RequiredFields = []Field{FieldName, FieldAmount, FieldCategory}

// OptionalFields may appear in an import header.
var OptionalFields = []Field{
	FieldDescription,
	FieldPaymentMethod,
	FieldPaymentID,
	FieldDate,
	FieldTime,
	FieldStatus,
}

// AllFields returns required then optional fields, the template column order.
func AllFields() []Field {
	out := make([]Field, 0, len(RequiredFields)+len(OptionalFields))
	out = append(out, RequiredFields...)
	return append(out, OptionalFields...)
}

// ParseField reports whether s names a known field.
func ParseField(s string) (Field, bool) {
	for _, f := range AllFields() {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Row is read access shared by RawRow and EditableRow.
type Row interface {
	Value(f Field) string
	Has(f Field) bool
}

// RawRow is one tokenized data line keyed by header name. It is never
// modified after the tokenizer builds it.
type RawRow struct {
	line   int
	values map[string]string
}

// NewRawRow builds a RawRow from a column mapping. The map is copied.
func NewRawRow(line int, values map[string]string) RawRow {
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return RawRow{line: line, values: cp}
}

// Line is the 1-based source line the row was read from.
func (r RawRow) Line() int { return r.line }

// Value returns the raw value of f, or "" when the column is absent.
func (r RawRow) Value(f Field) string { return r.values[string(f)] }

// Has reports whether the header contained f.
func (r RawRow) Has(f Field) bool {
	_, ok := r.values[string(f)]
	return ok
}

// Columns returns a copy of every header→value pair, including unknown columns.
func (r RawRow) Columns() map[string]string {
	cp := make(map[string]string, len(r.values))
	for k, v := range r.values {
		cp[k] = v
	}
	return cp
}

// EditableRow is a working copy of a row held between parse and commit.
type EditableRow struct {
	ID     string
	Fields map[Field]string
}

// NewEditableRow copies the known fields of raw under id.
func NewEditableRow(id string, raw RawRow) *EditableRow {
	row := &EditableRow{ID: id, Fields: make(map[Field]string)}
	for _, f := range AllFields() {
		if raw.Has(f) {
			row.Fields[f] = raw.Value(f)
		}
	}
	return row
}

// Value returns the current value of f, or "".
func (r *EditableRow) Value(f Field) string { return r.Fields[f] }

// Has reports whether f has been set on the row.
func (r *EditableRow) Has(f Field) bool {
	_, ok := r.Fields[f]
	return ok
}

// Clone returns a deep copy of the row.
func (r *EditableRow) Clone() *EditableRow {
	cp := &EditableRow{ID: r.ID, Fields: make(map[Field]string, len(r.Fields))}
	for k, v := range r.Fields {
		cp.Fields[k] = v
	}
	return cp
}
