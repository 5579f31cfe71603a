package importer

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// ErrNotCSV is returned for uploads that are neither named .csv nor typed text/csv.
var ErrNotCSV = errors.New("please upload a CSV file")

// CheckFile accepts a file when its extension is .csv or its MIME type is
// text/csv. An empty content type is judged by name alone.
func CheckFile(name, contentType string) error {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return nil
	}
	if contentType != "" {
		mt, _, err := mime.ParseMediaType(contentType)
		if err == nil && mt == "text/csv" {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrNotCSV, name)
}
