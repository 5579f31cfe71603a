package importer

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/categories"
	"github.com/tally-dev/tally/internal/model"
)

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), // YYYY-MM-DD
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`), // DD/MM/YYYY
	regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`), // DD-MM-YYYY
}

var timePattern = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)

// ValidateRow checks one row against the import rules and returns every
// violation in rule order: name, amount, category, date, time. An empty result
// means the row can be committed.
func ValidateRow(row model.Row, cats categories.Set) []string {
	var errs []string

	if strings.TrimSpace(row.Value(model.FieldName)) == "" {
		errs = append(errs, "Missing name")
	}

	amount := strings.TrimSpace(row.Value(model.FieldAmount))
	if amount == "" {
		errs = append(errs, "Missing amount")
	} else if _, err := parseAmount(amount); err != nil {
		errs = append(errs, "Invalid amount (must be a positive number)")
	}

	category := strings.TrimSpace(row.Value(model.FieldCategory))
	if category == "" {
		errs = append(errs, "Missing category")
	} else if !cats.Contains(category) {
		errs = append(errs, fmt.Sprintf("Invalid category '%s' (must be one of: %s)", category, cats))
	}

	if date := strings.TrimSpace(row.Value(model.FieldDate)); date != "" {
		if msg := checkDate(date); msg != "" {
			errs = append(errs, msg)
		}
	}

	if clock := strings.TrimSpace(row.Value(model.FieldTime)); clock != "" {
		if msg := checkTime(clock); msg != "" {
			errs = append(errs, msg)
		}
	}

	return errs
}

// parseAmount returns the amount as a decimal, rejecting anything that is
// not a number greater than zero.
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount %s is not positive", d)
	}
	return d, nil
}

func checkDate(date string) string {
	matched := false
	for _, re := range datePatterns {
		if re.MatchString(date) {
			matched = true
			break
		}
	}
	if !matched {
		return fmt.Sprintf("Invalid date format '%s' (use YYYY-MM-DD, DD/MM/YYYY or DD-MM-YYYY)", date)
	}
	if _, err := time.Parse(dateLayout, NormalizeDate(date)); err != nil {
		return fmt.Sprintf("Invalid date '%s' (not a calendar date)", date)
	}
	return ""
}

func checkTime(clock string) string {
	if !timePattern.MatchString(clock) {
		return fmt.Sprintf("Invalid time format '%s' (use HH:MM or HH:MM:SS)", clock)
	}
	if _, err := time.Parse(timeLayout, padTime(clock)); err != nil {
		return fmt.Sprintf("Invalid time '%s' (not a time of day)", clock)
	}
	return ""
}
