package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// minAnomalyRecords is the fewest records worth looking for outliers in.
const minAnomalyRecords = 5

// Anomaly is a day whose total sits more than two standard deviations
// above the mean daily total.
type Anomaly struct {
	Date   string // YYYY-MM-DD
	Amount decimal.Decimal
	Count  int
	Reason string
}

type day struct {
	date  string
	total decimal.Decimal
	txns  []model.Transaction
}

// Anomalies flags unusually large days in txns. Fewer than five records
// yield nil. Results are in date order.
func Anomalies(txns []model.Transaction) []Anomaly {
	if len(txns) < minAnomalyRecords {
		return nil
	}

	byDate := make(map[string]*day)
	for _, t := range txns {
		key := dateOf(t.Timestamp)
		d, ok := byDate[key]
		if !ok {
			d = &day{date: key, total: decimal.Zero}
			byDate[key] = d
		}
		d.total = d.total.Add(t.Amount)
		d.txns = append(d.txns, t)
	}

	days := make([]*day, 0, len(byDate))
	for _, d := range byDate {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].date < days[j].date })

	values := make([]float64, len(days))
	var sum float64
	for i, d := range days {
		values[i] = d.total.InexactFloat64()
		sum += values[i]
	}
	mean := sum / float64(len(values))
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	threshold := mean + 2*math.Sqrt(variance)

	var out []Anomaly
	for i, d := range days {
		if values[i] <= threshold {
			continue
		}
		out = append(out, Anomaly{
			Date:   d.date,
			Amount: d.total,
			Count:  len(d.txns),
			Reason: anomalyReason(d.txns),
		})
	}
	return out
}

func anomalyReason(txns []model.Transaction) string {
	if len(txns) == 1 {
		return fmt.Sprintf("Large %s transaction", txns[0].Category)
	}
	return fmt.Sprintf("Multiple %s transactions on same day", topCategory(txns))
}

// topCategory is the most frequent category; ties go to the first seen.
func topCategory(txns []model.Transaction) string {
	counts := make(map[string]int)
	top, best := "", 0
	for _, t := range txns {
		counts[t.Category]++
	}
	for _, t := range txns {
		if n := counts[t.Category]; n > best {
			top, best = t.Category, n
		}
	}
	return top
}

func dateOf(timestamp string) string {
	if len(timestamp) >= 10 {
		return timestamp[:10]
	}
	return timestamp
}
