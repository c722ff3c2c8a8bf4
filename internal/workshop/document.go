package workshop

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Cents is a monetary amount in hundredths of the currency unit.
type Cents int64

// UnmarshalJSON accepts integral and fractional numbers, rounding the latter.
// Older databases stored some amounts as floats.
func (c *Cents) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("invalid amount %s: %w", b, err)
	}
	*c = Cents(math.Round(f))
	return nil
}

// EntryType distinguishes income from expenses in the ledger.
type EntryType string

const (
	Credit EntryType = "CREDIT"
	Debit  EntryType = "DEBIT"
)

// OrderItem is a part or service line of a work order.
type OrderItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Price       Cents  `json:"price"`
}

// LedgerEntry is a financial record.
type LedgerEntry struct {
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	Amount        Cents     `json:"amount"`
	Type          EntryType `json:"type"`
	EffectiveDate string    `json:"effectiveDate"`
	PaymentDate   string    `json:"paymentDate,omitempty"`

	raw rawFields
}

// WorkOrder is a service order ("OS") for a vehicle.
type WorkOrder struct {
	ID          string      `json:"id"`
	OSNumber    int         `json:"osNumber"`
	ClientName  string      `json:"clientName"`
	ClientPhone string      `json:"clientPhone"`
	Vehicle     string      `json:"vehicle"`
	Plate       string      `json:"plate,omitempty"`
	Mileage     int         `json:"mileage"`
	Status      Status      `json:"status"`
	CreatedAt   string      `json:"createdAt"`
	Total       Cents       `json:"total"`
	Parts       []OrderItem `json:"parts"`
	Services    []OrderItem `json:"services"`
	FinancialID string      `json:"financialId,omitempty"`
	PublicNotes string      `json:"publicNotes,omitempty"`

	raw rawFields
}

// Document is the shop database. Only the collections this module works
// with are typed; every other key (clients, catalogs, settings, and fields
// added by newer versions of the application) round-trips untouched.
type Document struct {
	Ledger     []LedgerEntry `json:"ledger"`
	WorkOrders []WorkOrder   `json:"workOrders"`

	raw rawFields
}

// rawFields remembers what a decoded object looked like. Records built in
// code have none and encode every field.
type rawFields struct {
	// extra holds members the typed struct does not model.
	extra map[string]json.RawMessage
	// present holds every member name of the decoded object.
	present map[string]bool
}

// DecodeDocument parses the database content. Blank content is an empty
// document.
func DecodeDocument(content string) (*Document, error) {
	doc := &Document{}
	if strings.TrimSpace(content) == "" {
		return doc, nil
	}
	if err := json.Unmarshal([]byte(content), doc); err != nil {
		return nil, fmt.Errorf("failed to decode database: %w", err)
	}
	return doc, nil
}

// Encode serializes the document as compact JSON.
func (d *Document) Encode() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to encode database: %w", err)
	}
	return string(b), nil
}

// FindOrder returns the work order with the given id or OS number.
func (d *Document) FindOrder(ref string) (*WorkOrder, bool) {
	for i := range d.WorkOrders {
		o := &d.WorkOrders[i]
		if o.ID == ref || fmt.Sprint(o.OSNumber) == ref {
			return o, true
		}
	}
	return nil, false
}

// NextOSNumber returns one more than the highest OS number in use.
func (d *Document) NextOSNumber() int {
	n := 0
	for _, o := range d.WorkOrders {
		n = max(n, o.OSNumber)
	}
	return n + 1
}

// AdvanceOrder moves the referenced work order to its next status and
// returns the updated order.
func (d *Document) AdvanceOrder(ref string) (WorkOrder, error) {
	o, ok := d.FindOrder(ref)
	if !ok {
		return WorkOrder{}, fmt.Errorf("work order not found: %s", ref)
	}
	o.Status = Advance(o.Status)
	return *o, nil
}

// EffectiveTime parses the entry's effective date, which is either a bare
// date or an RFC 3339 timestamp.
func (e LedgerEntry) EffectiveTime() (time.Time, error) { return parseDate(e.EffectiveDate) }

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

func (d *Document) UnmarshalJSON(b []byte) error {
	type plain Document
	raw, err := decodeWithExtra(b, (*plain)(d))
	d.raw = raw
	return err
}

func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	if d.Ledger == nil {
		d.Ledger = []LedgerEntry{}
	}
	if d.WorkOrders == nil {
		d.WorkOrders = []WorkOrder{}
	}
	return encodeWithExtra(plain(d), d.raw)
}

func (o *WorkOrder) UnmarshalJSON(b []byte) error {
	type plain WorkOrder
	raw, err := decodeWithExtra(b, (*plain)(o))
	o.raw = raw
	return err
}

func (o WorkOrder) MarshalJSON() ([]byte, error) {
	type plain WorkOrder
	if o.Parts == nil {
		o.Parts = []OrderItem{}
	}
	if o.Services == nil {
		o.Services = []OrderItem{}
	}
	return encodeWithExtra(plain(o), o.raw)
}

func (e *LedgerEntry) UnmarshalJSON(b []byte) error {
	type plain LedgerEntry
	raw, err := decodeWithExtra(b, (*plain)(e))
	e.raw = raw
	return err
}

func (e LedgerEntry) MarshalJSON() ([]byte, error) {
	type plain LedgerEntry
	return encodeWithExtra(plain(e), e.raw)
}

// decodeWithExtra decodes b into known and records the member names of b
// along with the members known does not re-emit.
func decodeWithExtra(b []byte, known any) (rawFields, error) {
	if err := json.Unmarshal(b, known); err != nil {
		return rawFields{}, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return rawFields{}, err
	}
	raw := rawFields{present: make(map[string]bool, len(all))}
	for k := range all {
		raw.present[k] = true
	}
	kb, err := json.Marshal(known)
	if err != nil {
		return rawFields{}, err
	}
	var emitted map[string]json.RawMessage
	if err := json.Unmarshal(kb, &emitted); err != nil {
		return rawFields{}, err
	}
	for k := range emitted {
		delete(all, k)
	}
	if len(all) > 0 {
		raw.extra = all
	}
	return raw, nil
}

// encodeWithExtra encodes known and merges in the extra members it lacks.
// For decoded objects, zero-valued members that were absent from the input
// stay absent.
func encodeWithExtra(known any, raw rawFields) ([]byte, error) {
	kb, err := json.Marshal(known)
	if err != nil || (raw.present == nil && len(raw.extra) == 0) {
		return kb, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(kb, &all); err != nil {
		return nil, err
	}
	if raw.present != nil {
		for k, v := range all {
			if !raw.present[k] && isZeroJSON(v) {
				delete(all, k)
			}
		}
	}
	for k, v := range raw.extra {
		if _, ok := all[k]; !ok {
			all[k] = v
		}
	}
	return json.Marshal(all)
}

func isZeroJSON(v json.RawMessage) bool {
	switch string(v) {
	case "null", `""`, "0", "false":
		return true
	}
	return false
}
