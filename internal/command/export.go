package command

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/joeycumines/shopdb/internal/config"
	"github.com/joeycumines/shopdb/internal/report"
	"github.com/joeycumines/shopdb/internal/workshop"
)

// exportFolder resolves the export folder: flag, then [export] folder, then
// export.dir.
func exportFolder(env *Env, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v, ok := env.Config.GetCommandOption("export", "folder"); ok && v != "" {
		return config.ExpandHome(v)
	}
	return env.Schema.ResolvePath(env.Config, config.KeyExportDir)
}

// ExportCommand writes arbitrary content as a report file.
type ExportCommand struct {
	*BaseCommand
	env    *Env
	folder string
	name   string
}

// NewExportCommand creates the export command.
func NewExportCommand(env *Env) *ExportCommand {
	return &ExportCommand{
		BaseCommand: NewBaseCommand("export",
			"Write a report file, prefixed with a UTF-8 byte order mark",
			"export [-folder dir] [-name file] [file|-]"),
		env: env,
	}
}

func (c *ExportCommand) SetupFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.folder, "folder", "", "Target folder, created if missing (overrides export.dir)")
	fs.StringVar(&c.name, "name", "", "File name inside the folder (default from [export] name)")
}

func (c *ExportCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	name := c.name
	if name == "" {
		name, _ = c.env.Config.GetCommandOption("export", "name")
	}
	if name == "" {
		name = c.env.Schema.Lookup("export", "name").Default
	}
	var input string
	if len(args) == 1 {
		input = args[0]
	}
	content, err := c.env.ReadInput(input)
	if err != nil {
		return err
	}
	exporter := report.NewExporter(c.env.Logger)
	return printResult(exporter.Export(exportFolder(c.env, c.folder), name, content), stdout)
}

// ReportCommand exports the financial report for a date range.
type ReportCommand struct {
	dbCommand
	folder string
	from   string
	to     string
}

// NewReportCommand creates the report command.
func NewReportCommand(env *Env) *ReportCommand {
	return &ReportCommand{dbCommand: newDBCommand(env, "report",
		"Export the financial report (ledger joined with work orders) as CSV",
		"report [-db path] [-folder dir] [-from YYYY-MM-DD] [-to YYYY-MM-DD]")}
}

func (c *ReportCommand) SetupFlags(fs *flag.FlagSet) {
	c.dbCommand.SetupFlags(fs)
	fs.StringVar(&c.folder, "folder", "", "Target folder (overrides export.dir)")
	fs.StringVar(&c.from, "from", "", "First day, inclusive (default: first day of this month)")
	fs.StringVar(&c.to, "to", "", "Last day, inclusive (default: today)")
}

func (c *ReportCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	now := c.env.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	var err error
	if c.from != "" {
		if from, err = time.Parse(time.DateOnly, c.from); err != nil {
			return fmt.Errorf("invalid -from date: %w", err)
		}
	}
	if c.to != "" {
		if to, err = time.Parse(time.DateOnly, c.to); err != nil {
			return fmt.Errorf("invalid -to date: %w", err)
		}
	}
	if to.Before(from) {
		return fmt.Errorf("empty date range: %s is after %s", from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	path, err := c.path()
	if err != nil {
		return err
	}
	doc, err := workshop.DecodeDocument(c.env.Store().Load(path))
	if err != nil {
		return err
	}
	csv, err := report.FinancialReport(doc, from, to, now.Location())
	if err != nil {
		return err
	}
	exporter := report.NewExporter(c.env.Logger)
	return printResult(exporter.Export(exportFolder(c.env, c.folder), report.FinancialReportName(from, to), csv), stdout)
}
