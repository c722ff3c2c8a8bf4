package command

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/joeycumines/shopdb/internal/workshop"
)

// orderEnv is the environment order filter expressions are evaluated in.
// Money is in currency units.
type orderEnv struct {
	Number  int     `expr:"number"`
	Status  string  `expr:"status"`
	Client  string  `expr:"client"`
	Phone   string  `expr:"phone"`
	Vehicle string  `expr:"vehicle"`
	Plate   string  `expr:"plate"`
	Km      int     `expr:"km"`
	Total   float64 `expr:"total"`
	Linked  bool    `expr:"linked"`
}

func newOrderEnv(o workshop.WorkOrder) orderEnv {
	return orderEnv{
		Number:  o.OSNumber,
		Status:  string(o.Status),
		Client:  o.ClientName,
		Phone:   o.ClientPhone,
		Vehicle: o.Vehicle,
		Plate:   o.Plate,
		Km:      o.Mileage,
		Total:   float64(o.Total) / 100,
		Linked:  o.FinancialID != "",
	}
}

// orderFilter selects work orders with a boolean expression such as
// `status == "APROVADO" && total > 100`.
type orderFilter struct {
	program *vm.Program
}

func compileOrderFilter(expression string) (*orderFilter, error) {
	if expression == "" {
		return &orderFilter{}, nil
	}
	program, err := expr.Compile(expression, expr.Env(orderEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	return &orderFilter{program: program}, nil
}

func (f *orderFilter) match(o workshop.WorkOrder) (bool, error) {
	if f.program == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, newOrderEnv(o))
	if err != nil {
		return false, fmt.Errorf("filter failed on order #%d: %w", o.OSNumber, err)
	}
	b, _ := out.(bool)
	return b, nil
}
