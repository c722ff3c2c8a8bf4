package command

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/joeycumines/shopdb/internal/report"
	"github.com/joeycumines/shopdb/internal/storage"
	"github.com/joeycumines/shopdb/internal/workshop"
)

// itemList collects repeated -part/-service flags of the form
// "description=price".
type itemList []workshop.OrderItem

func (l *itemList) String() string {
	parts := make([]string, len(*l))
	for i, it := range *l {
		parts[i] = fmt.Sprintf("%s=%d", it.Description, it.Price)
	}
	return strings.Join(parts, ",")
}

func (l *itemList) Set(v string) error {
	desc, price, ok := strings.Cut(v, "=")
	desc = strings.TrimSpace(desc)
	if !ok || desc == "" {
		return fmt.Errorf("expected description=price, got %q", v)
	}
	cents, err := parsePrice(price)
	if err != nil {
		return err
	}
	*l = append(*l, workshop.OrderItem{Description: desc, Price: cents})
	return nil
}

// parsePrice accepts "150", "150.5" or "150,50" (currency units) and returns
// cents.
func parsePrice(s string) (workshop.Cents, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	cents := math.Round(f * 100)
	// float64(math.MaxInt64) is 2^63, the first value that does not fit.
	if cents >= float64(math.MaxInt64) {
		return 0, fmt.Errorf("price too large %q", s)
	}
	return workshop.Cents(cents), nil
}

// OrderCommand manages work orders stored in the database.
type OrderCommand struct {
	dbCommand
}

// NewOrderCommand creates the order command.
func NewOrderCommand(env *Env) *OrderCommand {
	return &OrderCommand{newDBCommand(env, "order",
		"Create and advance work orders",
		"order [-db path] <add|advance|list> [options]")}
}

func (c *OrderCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errors.New("missing subcommand: add, advance or list")
	}
	sub, rest := strings.ToLower(args[0]), args[1:]
	switch sub {
	case "add":
		return c.add(rest, stdout, stderr)
	case "advance":
		return c.advance(rest, stdout, stderr)
	case "list":
		return c.list(rest, stdout, stderr)
	default:
		return fmt.Errorf("unknown order subcommand: %s", sub)
	}
}

func (c *OrderCommand) add(args []string, stdout, stderr io.Writer) error {
	var (
		n        workshop.NewOrder
		parts    itemList
		services itemList
	)
	fs := flag.NewFlagSet("order-add", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&n.Vehicle, "vehicle", "", "Vehicle description (required)")
	fs.StringVar(&n.Plate, "plate", "", "License plate")
	fs.StringVar(&n.ClientName, "client", "", "Client name")
	fs.StringVar(&n.ClientPhone, "phone", "", "Client phone")
	fs.IntVar(&n.Mileage, "km", 0, "Odometer reading")
	fs.StringVar(&n.PublicNotes, "notes", "", "Notes shown to the client")
	fs.Var(&parts, "part", "Part as description=price, repeatable")
	fs.Var(&services, "service", "Service as description=price, repeatable")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if strings.TrimSpace(n.Vehicle) == "" {
		return errors.New("-vehicle is required")
	}
	n.Parts, n.Services = parts, services

	var created workshop.WorkOrder
	err := c.update(func(doc *workshop.Document) error {
		created = doc.AddOrder(n, c.env.Now())
		return nil
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "created order #%d (%s) total %s\n", created.OSNumber, created.ID, report.FormatMoney(created.Total))
	return nil
}

func (c *OrderCommand) advance(args []string, stdout, stderr io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: order advance <id|number>")
	}
	var updated workshop.WorkOrder
	err := c.update(func(doc *workshop.Document) error {
		var err error
		updated, err = doc.AdvanceOrder(args[0])
		return err
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "order #%d is now %s\n", updated.OSNumber, workshop.Label(updated.Status))
	return nil
}

func (c *OrderCommand) list(args []string, stdout, stderr io.Writer) error {
	var filter string
	fs := flag.NewFlagSet("order-list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&filter, "filter", "", `Expression selecting orders, e.g. 'status == "APROVADO" && total > 100'`)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	f, err := compileOrderFilter(filter)
	if err != nil {
		return err
	}

	path, err := c.path()
	if err != nil {
		return err
	}
	doc, err := workshop.DecodeDocument(c.env.Store().Load(path))
	if err != nil {
		return err
	}

	rows := [][]string{{"No.", "Status", "Vehicle", "Client", "Total"}}
	for _, o := range doc.WorkOrders {
		ok, err := f.match(o)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		rows = append(rows, []string{
			"#" + strconv.Itoa(o.OSNumber),
			workshop.Label(o.Status),
			truncate(o.Vehicle, 24, "…"),
			o.ClientName,
			report.FormatMoney(o.Total),
		})
	}
	_, _ = io.WriteString(stdout, table(rows))
	return nil
}

// update loads the document, applies fn and saves the result. An unreadable
// database is never overwritten.
func (c *OrderCommand) update(fn func(*workshop.Document) error) error {
	path, err := c.path()
	if err != nil {
		return err
	}
	store := c.env.Store()
	content, state := store.LoadState(path)
	if state == storage.Unreadable {
		return fmt.Errorf("refusing to modify unreadable database %s", path)
	}
	doc, err := workshop.DecodeDocument(content)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	out, err := doc.Encode()
	if err != nil {
		return err
	}
	if r := store.Save(path, out); !r.Success {
		return errors.New(r.Message)
	}
	return nil
}
