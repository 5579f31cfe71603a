package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

var (
	// ErrTooFewLines is returned when a file lacks a header plus one data line.
	ErrTooFewLines = errors.New("CSV file must contain a header row and at least one data row")
	// ErrMissingHeaders is returned when a required column is absent.
	ErrMissingHeaders = errors.New("CSV file is missing required headers")
)

var lineSplit = regexp.MustCompile(`\r?\n`)

// DroppedLine records a data line discarded because it had fewer values
// than the header has columns.
type DroppedLine struct {
	Line   int // 1-based
	Fields int
	Reason string
}

// Parsed is the output of Tokenize.
type Parsed struct {
	Headers []string
	Rows    []model.RawRow
	Dropped []DroppedLine
}

// Tokenize splits CSV text into header and data rows.
//
// Each line is tokenized on its own; quoted values may contain commas but
// not line breaks. Blank lines are skipped. Lines with fewer values than
// headers are not returned as rows and are listed in Parsed.Dropped instead.
func Tokenize(text string) (*Parsed, error) {
	lines := lineSplit.Split(text, -1)

	var content []int
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			content = append(content, i)
		}
	}
	if len(content) < 2 {
		return nil, ErrTooFewLines
	}

	headerLine := lines[content[0]]
	headers, err := splitLine(headerLine)
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}
	if missing := missingHeaders(headers); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingHeaders, strings.Join(missing, ", "))
	}

	p := &Parsed{Headers: headers}
	for _, idx := range content[1:] {
		lineNo := idx + 1
		values, err := splitLine(lines[idx])
		if err != nil {
			p.Dropped = append(p.Dropped, DroppedLine{Line: lineNo, Reason: err.Error()})
			continue
		}
		if len(values) < len(headers) {
			p.Dropped = append(p.Dropped, DroppedLine{
				Line:   lineNo,
				Fields: len(values),
				Reason: fmt.Sprintf("expected %d values, got %d", len(headers), len(values)),
			})
			continue
		}
		cols := make(map[string]string, len(headers))
		for i, h := range headers {
			cols[h] = values[i]
		}
		p.Rows = append(p.Rows, model.NewRawRow(lineNo, cols))
	}
	return p, nil
}

// splitLine tokenizes a single CSV line. Enclosing quotes are removed and
// doubled quotes inside them collapse to one.
func splitLine(line string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	return cr.Read()
}

func missingHeaders(headers []string) []string {
	have := make(map[string]bool, len(headers))
	for _, h := range headers {
		have[h] = true
	}
	var missing []string
	for _, f := range model.RequiredFields {
		if !have[string(f)] {
			missing = append(missing, string(f))
		}
	}
	return missing
}
