package categories

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/tally-dev/tally/internal/model"
)

// Set is an ordered, fixed list of category labels.
type Set struct {
	names []string
	index map[string]int
}

// NewSet creates a Set preserving the order of names.
func NewSet(names ...string) Set {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}
	return Set{names: names, index: idx}
}

// Contains reports whether name is a member. Matching is case-sensitive.
func (s Set) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Names returns the labels in display order.
func (s Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// String joins the labels with ", ".
func (s Set) String() string {
	return strings.Join(s.names, ", ")
}

// Closest returns the member nearest to name by edit distance, ignoring case.
// ok is false when nothing is within half the length of name.
func (s Set) Closest(name string) (best string, ok bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", false
	}
	bestDist := -1
	for _, n := range s.names {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(n))
		if bestDist < 0 || d < bestDist {
			best, bestDist = n, d
		}
	}
	limit := len(needle) / 2
	if limit < 1 {
		limit = 1
	}
	return best, bestDist <= limit
}

var (
	expenseCategories = NewSet(
		"Utilities",
		"Rent",
		"Supplies",
		"Marketing",
		"Salaries",
		"Travel",
		"Maintenance",
		"Taxes",
		"Insurance",
		"Subscriptions",
		"Miscellaneous",
	)
	incomeCategories = NewSet(
		"Sales",
		"Services",
		"Investments",
		"Subscriptions",
		"Refunds",
		"Rent",
		"Other",
	)
)

// PaymentMethods is the payment-method vocabulary shared by both kinds.
var PaymentMethods = []string{"cash", "card", "bank_transfer", "upi", "paypal", "other"}

// Profile parameterizes the import pipeline for one transaction kind.
type Profile struct {
	Kind       model.Kind
	Categories Set
	Collection string // per-user collection name under transactions/{userId}/
}

// CollectionPath returns the document path for userID's records of this kind.
func (p Profile) CollectionPath(userID string) string {
	return fmt.Sprintf("transactions/%s/%s", userID, p.Collection)
}

// Expense returns the expense profile.
func Expense() Profile {
	return Profile{Kind: model.KindExpense, Categories: expenseCategories, Collection: "user_transactions"}
}

// Income returns the income profile.
func Income() Profile {
	return Profile{Kind: model.KindIncome, Categories: incomeCategories, Collection: "user_income"}
}

// ForKind returns the profile for k.
func ForKind(k model.Kind) (Profile, error) {
	switch k {
	case model.KindExpense:
		return Expense(), nil
	case model.KindIncome:
		return Income(), nil
	default:
		return Profile{}, fmt.Errorf("unknown transaction kind %q", k)
	}
}
