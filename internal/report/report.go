package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// CategoryTotal is the sum of one category's records.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
	Count    int
	Share    decimal.Decimal // percentage of the overall total, 2 places
}

// MonthTotal is the sum of one calendar month's records.
type MonthTotal struct {
	Month string // YYYY-MM
	Total decimal.Decimal
	Count int
}

// Summary aggregates a list of records.
type Summary struct {
	Total      decimal.Decimal
	Count      int
	Categories []CategoryTotal // largest total first
	Months     []MonthTotal    // chronological
}

var hundred = decimal.NewFromInt(100)

// Summarize totals txns by category and by month. Only completed records
// count towards totals; other statuses are skipped.
func Summarize(txns []model.Transaction) Summary {
	s := Summary{Total: decimal.Zero}
	byCat := make(map[string]*CategoryTotal)
	byMonth := make(map[string]*MonthTotal)

	for _, t := range txns {
		if t.Status != model.StatusCompleted {
			continue
		}
		s.Total = s.Total.Add(t.Amount)
		s.Count++

		c, ok := byCat[t.Category]
		if !ok {
			c = &CategoryTotal{Category: t.Category, Total: decimal.Zero}
			byCat[t.Category] = c
		}
		c.Total = c.Total.Add(t.Amount)
		c.Count++

		month := monthOf(t.Timestamp)
		m, ok := byMonth[month]
		if !ok {
			m = &MonthTotal{Month: month, Total: decimal.Zero}
			byMonth[month] = m
		}
		m.Total = m.Total.Add(t.Amount)
		m.Count++
	}

	for _, c := range byCat {
		if s.Total.IsPositive() {
			c.Share = c.Total.Mul(hundred).Div(s.Total).Round(2)
		}
		s.Categories = append(s.Categories, *c)
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		a, b := s.Categories[i], s.Categories[j]
		if !a.Total.Equal(b.Total) {
			return a.Total.GreaterThan(b.Total)
		}
		return a.Category < b.Category
	})

	for _, m := range byMonth {
		s.Months = append(s.Months, *m)
	}
	sort.Slice(s.Months, func(i, j int) bool { return s.Months[i].Month < s.Months[j].Month })

	return s
}

func monthOf(timestamp string) string {
	if len(timestamp) >= 7 {
		return timestamp[:7]
	}
	return timestamp
}

// exportRow is the CSV shape of an exported record.
type exportRow struct {
	ID            string `csv:"id"`
	Name          string `csv:"name"`
	Amount        string `csv:"amount"`
	Category      string `csv:"category"`
	Timestamp     string `csv:"timestamp"`
	Type          string `csv:"type"`
	Description   string `csv:"description"`
	PaymentMethod string `csv:"payment_method"`
	PaymentID     string `csv:"payment_id"`
	Status        string `csv:"status"`
}

// WriteCSV exports txns with a header row. Amounts are written to 2 places.
func WriteCSV(w io.Writer, txns []model.Transaction) error {
	rows := make([]exportRow, len(txns))
	for i, t := range txns {
		rows[i] = exportRow{
			ID:            t.ID,
			Name:          t.Name,
			Amount:        t.Amount.StringFixed(2),
			Category:      t.Category,
			Timestamp:     t.Timestamp,
			Type:          string(t.Type),
			Description:   model.Deref(t.Description),
			PaymentMethod: model.Deref(t.PaymentMethod),
			PaymentID:     model.Deref(t.PaymentID),
			Status:        string(t.Status),
		}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}
