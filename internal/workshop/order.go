package workshop

import (
	"time"

	"github.com/google/uuid"
)

// NewOrder describes a work order to be created.
type NewOrder struct {
	Vehicle     string
	Plate       string
	ClientName  string
	ClientPhone string
	Mileage     int
	Parts       []OrderItem
	Services    []OrderItem
	PublicNotes string
}

// NewWorkOrder builds a quote-stage work order numbered osNumber. Items
// without an id are assigned one.
func NewWorkOrder(osNumber int, n NewOrder, now time.Time) WorkOrder {
	parts := withIDs(n.Parts)
	services := withIDs(n.Services)
	return WorkOrder{
		ID:          uuid.NewString(),
		OSNumber:    osNumber,
		ClientName:  n.ClientName,
		ClientPhone: n.ClientPhone,
		Vehicle:     n.Vehicle,
		Plate:       n.Plate,
		Mileage:     n.Mileage,
		Status:      StatusQuote,
		CreatedAt:   now.UTC().Format(time.RFC3339),
		Total:       sum(parts) + sum(services),
		Parts:       parts,
		Services:    services,
		PublicNotes: n.PublicNotes,
	}
}

// AddOrder appends a new work order with the next free OS number.
func (d *Document) AddOrder(n NewOrder, now time.Time) WorkOrder {
	o := NewWorkOrder(d.NextOSNumber(), n, now)
	d.WorkOrders = append(d.WorkOrders, o)
	return o
}

func withIDs(items []OrderItem) []OrderItem {
	out := make([]OrderItem, len(items))
	for i, it := range items {
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		out[i] = it
	}
	return out
}

func sum(items []OrderItem) Cents {
	var total Cents
	for _, it := range items {
		total += it.Price
	}
	return total
}
