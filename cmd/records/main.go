package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"gitlab.com/dirk.krummacker/records-service/internal/controller"
	"gitlab.com/dirk.krummacker/records-service/internal/form"
	"gitlab.com/dirk.krummacker/records-service/internal/logging"
	"gitlab.com/dirk.krummacker/records-service/internal/model"
	"gitlab.com/dirk.krummacker/records-service/internal/pagination"
	"gitlab.com/dirk.krummacker/records-service/internal/region"
	"gitlab.com/dirk.krummacker/records-service/internal/store"
	"gitlab.com/dirk.krummacker/records-service/internal/tui"
)

// Globals are the flags shared by all commands.
type Globals struct {
	URL      string        `help:"Base URL of the records service." default:"http://localhost:8080" env:"RECORDS_URL"`
	Timeout  time.Duration `help:"Timeout of a single store request." default:"10s" env:"RECORDS_TIMEOUT"`
	Country  string        `help:"Country whose states and districts are offered." default:"IN" env:"REGION_COUNTRY"`
	LogLevel string        `help:"Minimum log level." default:"warn" env:"LOG_LEVEL" enum:"debug,info,warn,error"`
}

// CLI is the top-level command structure for records.
type CLI struct {
	Globals

	UI   UICmd   `cmd:"" default:"1" help:"Open the interactive form and table."`
	List ListCmd `cmd:"" help:"Print a page of records."`
	Add  AddCmd  `cmd:"" help:"Add a record."`
	Edit EditCmd `cmd:"" help:"Replace fields of a record."`
}

// newController connects a controller to the records service.
func (g *Globals) newController(logger *slog.Logger) *controller.Controller {
	client := store.NewHTTPClient(g.URL, store.WithTimeout(g.Timeout))
	return controller.New(client, region.Default(),
		controller.WithCountry(g.Country),
		controller.WithLogger(logger))
}

// UICmd opens the terminal UI.
type UICmd struct {
	LogFile string `help:"Write log entries to this file while the UI is open." type:"path"`
}

// Run starts the terminal UI. Without a terminal it prints the first page like list.
func (u *UICmd) Run(g *Globals, out io.Writer, logger *slog.Logger) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return (&ListCmd{Page: 1, Size: pagination.DefaultPageSize}).Run(g, out, logger)
	}

	// The UI owns the terminal, so log entries go to a file or nowhere.
	var w io.Writer = io.Discard
	if u.LogFile != "" {
		f, err := os.OpenFile(u.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("ui: %w", err)
		}
		defer f.Close()
		w = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return tui.Run(ctx, g.newController(logging.New(w, g.LogLevel, "text")))
}

// ListCmd prints one page of records.
type ListCmd struct {
	Page int `help:"Page to print." default:"1"`
	Size int `help:"Records per page: 8, 10 or 20." default:"8"`
}

// Run loads the records and prints the requested page.
func (l *ListCmd) Run(g *Globals, out io.Writer, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := g.newController(logger)
	if err := c.Load(ctx); err != nil {
		return err
	}
	if err := c.SetPageSize(l.Size); err != nil {
		return err
	}
	if _, count := c.Page(); count > 0 && !c.GoToPage(l.Page) {
		return fmt.Errorf("page %d does not exist, there are %d", l.Page, count)
	}
	return printPage(out, c)
}

// printPage writes the visible records and the paging footer.
func printPage(out io.Writer, c *controller.Controller) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "ID", "Name", "Phone", "Email", "Address", "State", "District", "City", "Zip")
	offset := c.PageOffset()
	for i, r := range c.VisibleRecords() {
		t.Row(
			strconv.Itoa(offset+i+1),
			strconv.FormatInt(r.Id, 10),
			r.FirstName+" "+r.LastName,
			r.Phone,
			r.Email,
			r.Address,
			c.StateName(r.State),
			r.District,
			r.City,
			r.Zip,
		)
	}
	first, last, total := c.PageRange()
	_, err := fmt.Fprintf(out, "%s\n%d - %d of %d\n", t.String(), first, last, total)
	return err
}

// FieldFlags are the record fields that can be given on the command line. Phone and zip are
// formatted as in the form.
type FieldFlags struct {
	FirstName string `help:"First name."`
	LastName  string `help:"Last name."`
	Phone     string `help:"Phone number, ten digits."`
	Email     string `help:"Email address."`
	Address   string `help:"Street address."`
	State     string `help:"State code, e.g. KA."`
	District  string `help:"District of the state."`
	City      string `help:"City."`
	Zip       string `help:"Zip code, six characters."`
}

// apply enters the given flags into the draft, the state before the district.
func (f FieldFlags) apply(c *controller.Controller) error {
	inputs := []struct {
		field model.Field
		value string
	}{
		{model.FirstName, f.FirstName},
		{model.LastName, f.LastName},
		{model.Phone, f.Phone},
		{model.Email, f.Email},
		{model.Address, f.Address},
		{model.State, f.State},
		{model.District, f.District},
		{model.City, f.City},
		{model.Zip, f.Zip},
	}
	for _, in := range inputs {
		if in.value == "" {
			continue
		}
		if err := c.SetField(in.field, in.value); err != nil {
			return fmt.Errorf("%s: %w", in.field.Label(), err)
		}
	}
	return nil
}

// AddCmd creates a record from the field flags.
type AddCmd struct {
	FieldFlags `embed:""`
}

// Run validates and saves the new record.
func (a *AddCmd) Run(g *Globals, out io.Writer, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := g.newController(logger)
	if err := a.apply(c); err != nil {
		return err
	}
	return save(ctx, out, c)
}

// EditCmd replaces fields of an existing record. Fields without a flag keep their value;
// changing the state requires a district of the new state.
type EditCmd struct {
	ID         int64 `arg:"" help:"Identity of the record."`
	FieldFlags `embed:""`
}

// Run loads the record, applies the flags and saves it.
func (e *EditCmd) Run(g *Globals, out io.Writer, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := g.newController(logger)
	if err := c.Load(ctx); err != nil {
		return err
	}
	index := -1
	for i, r := range c.Records() {
		if r.Id == e.ID {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("record %d: %w", e.ID, store.ErrRecordNotFound)
	}
	if err := c.StartEdit(index); err != nil {
		return err
	}
	if err := e.apply(c); err != nil {
		return err
	}
	return save(ctx, out, c)
}

// save stores the draft and prints the confirmation.
func save(ctx context.Context, out io.Writer, c *controller.Controller) error {
	result, err := c.Save(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s (id %d)\n", result.Message(), result.Record.Id)
	return err
}

// errorMessage returns the text printed for a failed command. Validation failures, also those
// reported by the service, are shown with the message of the form.
func errorMessage(err error) string {
	if form.IsValidationError(err) {
		return form.UserMessage(err)
	}
	return err.Error()
}

func main() {
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Description("Manages contact records of the records service."),
		kong.BindTo(io.Writer(os.Stdout), (*io.Writer)(nil)),
	)
	ctx.Bind(&cli.Globals, logging.New(os.Stderr, cli.LogLevel, "text"))
	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", errorMessage(err))
		os.Exit(1)
	}
}
