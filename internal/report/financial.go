package report

import (
	"encoding/csv"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joeycumines/shopdb/internal/workshop"
)

// DisplayDate is the day format used in report cells.
const DisplayDate = "02/01/2006"

var financialHeader = []string{
	"Order No.",
	"Client",
	"Created",
	"Vehicle",
	"Km",
	"Amount",
	"Type",
	"Paid",
	"Description",
	"Effective Date",
}

var money = message.NewPrinter(language.BrazilianPortuguese)

// FormatMoney renders cents as Brazilian currency, e.g. "R$ 1.234,56".
func FormatMoney(c workshop.Cents) string {
	return money.Sprintf("R$ %.2f", float64(c)/100)
}

// FinancialReportName returns the export file name for the given range.
func FinancialReportName(start, end time.Time) string {
	return fmt.Sprintf("financial_report_%s_%s.csv", start.Format(time.DateOnly), end.Format(time.DateOnly))
}

type financialRow struct {
	day    time.Time
	fields []string
}

// FinancialReport renders the ledger entries effective between start and end
// (inclusive, compared by calendar day) as a semicolon separated table, one
// row per entry, ordered by effective day. Entries are joined to the work
// order that references them. Timestamps are shown in loc, time.Local if nil.
// Entries whose effective date cannot be parsed are skipped.
func FinancialReport(doc *workshop.Document, start, end time.Time, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.Local
	}
	from, to := civil(start), civil(end)

	orders := make(map[string]*workshop.WorkOrder, len(doc.WorkOrders))
	for i := range doc.WorkOrders {
		o := &doc.WorkOrders[i]
		if o.FinancialID != "" {
			if _, ok := orders[o.FinancialID]; !ok {
				orders[o.FinancialID] = o
			}
		}
	}

	var rows []financialRow
	for _, e := range doc.Ledger {
		day, err := civilDate(e.EffectiveDate, loc)
		if err != nil || day.Before(from) || day.After(to) {
			continue
		}
		rows = append(rows, financialRow{day: day, fields: financialFields(e, orders[e.ID], day, loc)})
	}
	slices.SortStableFunc(rows, func(a, b financialRow) int { return a.day.Compare(b.day) })

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	w.Comma = ';'
	if err := w.Write(financialHeader); err != nil {
		return "", err
	}
	for _, r := range rows {
		if err := w.Write(r.fields); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to render financial report: %w", err)
	}
	return sb.String(), nil
}

func financialFields(e workshop.LedgerEntry, o *workshop.WorkOrder, day time.Time, loc *time.Location) []string {
	var osNumber, client, created, vehicle, km string
	if o != nil {
		osNumber = strconv.Itoa(o.OSNumber)
		client = o.ClientName
		created = displayDate(o.CreatedAt, loc)
		vehicle = o.Vehicle
		km = strconv.Itoa(o.Mileage)
	}
	kind := "Expense"
	if e.Type == workshop.Credit {
		kind = "Income"
	}
	return []string{
		osNumber,
		client,
		created,
		vehicle,
		km,
		FormatMoney(e.Amount),
		kind,
		displayDate(e.PaymentDate, loc),
		e.Description,
		day.Format(DisplayDate),
	}
}

func displayDate(s string, loc *time.Location) string {
	if s == "" {
		return ""
	}
	day, err := civilDate(s, loc)
	if err != nil {
		return ""
	}
	return day.Format(DisplayDate)
}

// civilDate returns the calendar day of s. Bare dates are taken as is;
// timestamps are converted to loc first.
func civilDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return civil(t.In(loc)), nil
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
