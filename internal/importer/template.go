package importer

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/tally-dev/tally/internal/categories"
	"github.com/tally-dev/tally/internal/model"
)

// TemplateRow is one line of the downloadable import template.
type TemplateRow struct {
	Name          string `csv:"name"`
	Amount        string `csv:"amount"`
	Category      string `csv:"category"`
	Description   string `csv:"description"`
	PaymentMethod string `csv:"payment_method"`
	PaymentID     string `csv:"payment_id"`
	Date          string `csv:"date"`
	Time          string `csv:"time"`
	Status        string `csv:"status"`
}

// TemplateContentType is the MIME type the template is served as.
const TemplateContentType = "text/csv"

// TemplateName returns the download file name for kind.
func TemplateName(kind model.Kind) string {
	return fmt.Sprintf("%s_template.csv", kind)
}

// TemplateRows returns the sample rows shown in the template for p.
func TemplateRows(p categories.Profile) []TemplateRow {
	if p.Kind == model.KindIncome {
		return []TemplateRow{
			{Name: "Website order #1042", Amount: "249.99", Category: "Sales", Description: "Online store order", PaymentMethod: "card", PaymentID: "pay_1042", Date: "2024-01-15", Time: "10:30:00", Status: "completed"},
			{Name: "Consulting retainer", Amount: "1500", Category: "Services", Description: "January retainer", PaymentMethod: "bank_transfer", PaymentID: "", Date: "31/01/2024", Time: "17:00:00", Status: "pending"},
			{Name: "Dividend payout", Amount: "320.50", Category: "Investments", Description: "", PaymentMethod: "bank_transfer", PaymentID: "", Date: "05-02-2024", Time: "", Status: "completed"},
			{Name: "Shop lease", Amount: "800", Category: "Rent", Description: "Sublet, back room", PaymentMethod: "upi", PaymentID: "upi_88213", Date: "", Time: "", Status: "completed"},
		}
	}
	return []TemplateRow{
		{Name: "Electricity bill", Amount: "125.50", Category: "Utilities", Description: "January electricity", PaymentMethod: "bank_transfer", PaymentID: "txn_001", Date: "2024-01-15", Time: "14:30:00", Status: "completed"},
		{Name: "Office rent", Amount: "2000", Category: "Rent", Description: "Monthly office rent", PaymentMethod: "bank_transfer", PaymentID: "", Date: "01/02/2024", Time: "09:00:00", Status: "completed"},
		{Name: "Printer paper", Amount: "45.99", Category: "Supplies", Description: "A4, 5 reams", PaymentMethod: "card", PaymentID: "card_7731", Date: "10-02-2024", Time: "", Status: "pending"},
		{Name: "Ad campaign", Amount: "300", Category: "Marketing", Description: "", PaymentMethod: "paypal", PaymentID: "", Date: "", Time: "", Status: "completed"},
	}
}

// WriteTemplate writes the header and sample rows for p as CSV.
func WriteTemplate(w io.Writer, p categories.Profile) error {
	if err := gocsv.Marshal(TemplateRows(p), w); err != nil {
		return fmt.Errorf("writing %s template: %w", p.Kind, err)
	}
	return nil
}
