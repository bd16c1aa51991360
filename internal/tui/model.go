// Package tui implements the terminal front end: the record form on the left, the paged
// records table on the right. All state lives in a controller.Controller; the model only
// mirrors it into widgets.
package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gitlab.com/dirk.krummacker/records-service/internal/controller"
	"gitlab.com/dirk.krummacker/records-service/internal/form"
	"gitlab.com/dirk.krummacker/records-service/internal/model"
)

// helpBarHeight is the number of lines reserved for the help bar at the bottom.
const helpBarHeight = 1

// statusBarHeight is the number of lines reserved for the status line.
const statusBarHeight = 1

// borderChrome is the number of lines consumed by top + bottom borders.
const borderChrome = 2

// Model is the root Bubble Tea model of the records UI.
type Model struct {
	ctx  context.Context
	ctrl *controller.Controller

	inputs []textinput.Model
	field  int
	pane   Pane

	table   table.Model
	spinner spinner.Model
	help    help.Model
	keys    formKeys
	tkeys   tableKeys

	status    string
	statusErr bool
	loading   bool
	saving    bool

	width  int
	height int
}

// NewModel creates a Model showing an empty form with the first field focused. The records
// are loaded by Init.
func NewModel(ctx context.Context, ctrl *controller.Controller) Model {
	inputs := make([]textinput.Model, len(model.AllFields))
	for i, f := range model.AllFields {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = f.Label()
		switch f {
		case model.Phone:
			in.CharLimit = 14
		case model.Zip:
			in.CharLimit = form.ZipLength
		}
		inputs[i] = in
	}
	inputs[0].Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	t := table.New(
		table.WithColumns(columns(60)),
		table.WithHeight(ctrl.PageSize()+1),
	)

	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		inputs:  inputs,
		pane:    PaneForm,
		table:   t,
		spinner: s,
		help:    help.New(),
		keys:    FormKeyMap(),
		tkeys:   TableKeyMap(),
		loading: true,
		status:  "Loading records...",
	}
}

// Init loads the records and starts the spinner and the cursor blink.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.spinner.Tick, textinput.Blink)
}

// load lists the records in the background.
func (m Model) load() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return RecordsLoadedMsg{Err: ctrl.Load(ctx)}
	}
}

// save sends the draft to the store in the background.
func (m Model) save() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		result, err := ctrl.Save(ctx)
		return RecordSavedMsg{Result: result, Err: err}
	}
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		formWidth, tableWidth := PaneWidths(msg.Width)
		for i := range m.inputs {
			m.inputs[i].Width = max(formWidth-borderChrome-labelStyle.GetWidth()-2, 1)
		}
		m.table.SetColumns(columns(tableWidth - borderChrome))
		m.table.SetWidth(max(tableWidth-borderChrome, 0))
		return m, nil

	case RecordsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.setError(fmt.Sprintf("Could not load records: %v", msg.Err))
		} else {
			m.setInfo(fmt.Sprintf("Loaded %d records", len(m.ctrl.Records())))
		}
		m.syncInputs()
		m.refreshTable()
		return m, nil

	case RecordSavedMsg:
		m.saving = false
		switch {
		case msg.Err == nil:
			m.setInfo(msg.Result.Message())
			m.syncInputs()
			m.refreshTable()
		case form.IsValidationError(msg.Err):
			m.setError(form.UserMessage(msg.Err))
		default:
			m.setError(fmt.Sprintf("Could not save record: %v", msg.Err))
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.pane == PaneForm {
		var cmd tea.Cmd
		m.inputs[m.field], cmd = m.inputs[m.field].Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey processes global keys first, then the keys of the focused pane.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := m.keys.globalKeys
	switch {
	case key.Matches(msg, g.Quit):
		return m, tea.Quit
	case key.Matches(msg, g.Save):
		if m.busy() {
			m.report(controller.ErrOperationInProgress)
			return m, nil
		}
		m.saving = true
		m.setInfo("Saving...")
		return m, m.save()
	case key.Matches(msg, g.Cancel):
		if m.report(m.ctrl.Cancel()) {
			m.setInfo("Cancelled")
			m.syncInputs()
			m.refreshTable()
		}
		return m, nil
	case key.Matches(msg, g.SwitchPane):
		return m.switchPane()
	case key.Matches(msg, g.NextPage):
		m.ctrl.NextPage()
		m.refreshTable()
		return m, nil
	case key.Matches(msg, g.PrevPage):
		m.ctrl.PrevPage()
		m.refreshTable()
		return m, nil
	case key.Matches(msg, g.PageSize):
		size := m.ctrl.CyclePageSize()
		m.table.SetHeight(size + 1)
		m.refreshTable()
		m.setInfo(fmt.Sprintf("%d records per page", size))
		return m, nil
	case key.Matches(msg, g.Reload):
		if m.busy() {
			m.report(controller.ErrOperationInProgress)
			return m, nil
		}
		m.loading = true
		m.setInfo("Loading records...")
		return m, m.load()
	}

	if m.pane == PaneTable {
		return m.handleTableKey(msg)
	}
	return m.handleFormKey(msg)
}

// busy reports whether a load or save was started and its answer has not arrived. The
// controller only becomes busy once the command runs.
func (m Model) busy() bool {
	return m.loading || m.saving || m.ctrl.Busy()
}

// handleTableKey moves the table cursor or starts editing the selected record.
func (m Model) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.tkeys.Edit) {
		if len(m.table.Rows()) == 0 {
			return m, nil
		}
		if !m.report(m.ctrl.StartEdit(m.ctrl.PageOffset() + m.table.Cursor())) {
			return m, nil
		}
		m.syncInputs()
		m.setInfo(fmt.Sprintf("Editing record %d", m.ctrl.State().(controller.Editing).ID()))
		return m.switchPane()
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleFormKey moves between fields, cycles state and district options, or edits the
// focused text field.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Next):
		return m, m.focusField((m.field + 1) % len(m.inputs))
	case key.Matches(msg, m.keys.Prev):
		return m, m.focusField((m.field + len(m.inputs) - 1) % len(m.inputs))
	}

	f := model.AllFields[m.field]
	if isChoice(f) {
		switch {
		case key.Matches(msg, m.keys.OptionNext):
			m.cycleOption(f, 1)
		case key.Matches(msg, m.keys.OptionPrev):
			m.cycleOption(f, -1)
		case msg.Type == tea.KeyBackspace || msg.Type == tea.KeyDelete:
			if m.report(m.ctrl.SetField(f, "")) {
				m.syncInputs()
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.field], cmd = m.inputs[m.field].Update(msg)
	// A refused input is reverted to the draft.
	m.report(m.ctrl.SetField(f, m.inputs[m.field].Value()))
	m.syncInputs()
	return m, cmd
}

// isChoice reports whether a field is chosen from a list instead of typed.
func isChoice(f model.Field) bool {
	return f == model.State || f == model.District
}

// cycleOption selects the next or previous state or district.
func (m *Model) cycleOption(f model.Field, delta int) {
	var options []string
	if f == model.State {
		for _, s := range m.ctrl.StateOptions() {
			options = append(options, s.Code)
		}
	} else {
		options = m.ctrl.DistrictOptions()
	}
	if len(options) == 0 {
		m.setError(controller.ErrStateNotSelected.Error())
		return
	}
	i := slices.Index(options, m.ctrl.Draft().Get(f))
	switch {
	case i < 0 && delta < 0:
		i = len(options) - 1
	case i < 0:
		i = 0
	default:
		i = (i + delta + len(options)) % len(options)
	}
	if m.report(m.ctrl.SetField(f, options[i])) {
		m.syncInputs()
	}
}

// focusField moves the cursor to the field at index i.
func (m *Model) focusField(i int) tea.Cmd {
	m.inputs[m.field].Blur()
	m.field = i
	return m.inputs[i].Focus()
}

// switchPane moves the keyboard focus to the other pane.
func (m Model) switchPane() (tea.Model, tea.Cmd) {
	if m.pane == PaneForm {
		m.pane = PaneTable
		m.inputs[m.field].Blur()
		m.table.Focus()
		return m, nil
	}
	m.pane = PaneForm
	m.table.Blur()
	return m, m.focusField(0)
}

// syncInputs copies the draft into the text fields.
func (m *Model) syncInputs() {
	draft := m.ctrl.Draft()
	for i, f := range model.AllFields {
		if m.inputs[i].Value() != draft.Get(f) {
			m.inputs[i].SetValue(draft.Get(f))
			m.inputs[i].CursorEnd()
		}
	}
}

// refreshTable shows the records of the current page.
func (m *Model) refreshTable() {
	visible := m.ctrl.VisibleRecords()
	offset := m.ctrl.PageOffset()
	rows := make([]table.Row, len(visible))
	for i, r := range visible {
		rows[i] = table.Row{
			strconv.Itoa(offset + i + 1),
			r.FirstName + " " + r.LastName,
			r.Phone,
			r.Email,
			m.ctrl.StateName(r.State),
			r.District,
			r.City,
			r.Zip,
		}
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// report shows err in the status line and returns whether there was none.
func (m *Model) report(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, controller.ErrOperationInProgress) {
		m.setError("Please wait for the current operation to finish")
	} else {
		m.setError(err.Error())
	}
	return false
}

func (m *Model) setInfo(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(s string) {
	m.status, m.statusErr = s, true
}

// columns returns the table columns for the given width.
func columns(width int) []table.Column {
	fixed := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Name", Width: 0},
		{Title: "Phone", Width: 14},
		{Title: "Email", Width: 0},
		{Title: "State", Width: 0},
		{Title: "District", Width: 0},
		{Title: "City", Width: 0},
		{Title: "Zip", Width: 6},
	}
	// The remaining width is shared by the columns without a fixed width; each cell has a
	// padding of two characters.
	rest := width - 4 - 14 - 6 - 2*len(fixed)
	share := max(rest/5, 6)
	for i := range fixed {
		if fixed[i].Width == 0 {
			fixed[i].Width = share
		}
	}
	return fixed
}

// contentHeight returns the usable height for pane content, accounting for border chrome,
// the status line and the help bar.
func (m Model) contentHeight() int {
	h := m.height - borderChrome - helpBarHeight - statusBarHeight
	if h < 1 {
		return 1
	}
	return h
}

// View renders the form pane, the table pane, the status line and the help bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	formWidth, tableWidth := PaneWidths(m.width)
	contentHeight := m.contentHeight()

	var formStyle, tableStyle lipgloss.Style
	if m.pane == PaneForm {
		formStyle = FocusedBorder()
		tableStyle = UnfocusedBorder()
	} else {
		formStyle = UnfocusedBorder()
		tableStyle = FocusedBorder()
	}
	formStyle = formStyle.Width(formWidth - borderChrome).Height(contentHeight)
	tableStyle = tableStyle.Width(tableWidth - borderChrome).Height(contentHeight)

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		formStyle.Render(m.viewForm()),
		tableStyle.Render(m.viewTable()),
	)

	var helpView string
	if m.pane == PaneForm {
		helpView = m.help.View(m.keys)
	} else {
		helpView = m.help.View(m.tkeys)
	}
	return lipgloss.JoinVertical(lipgloss.Left, panes, m.viewStatus(), helpView)
}

// viewForm renders the title and one line per field.
func (m Model) viewForm() string {
	var b strings.Builder
	if editing, ok := m.ctrl.State().(controller.Editing); ok {
		b.WriteString(titleStyle.Render(fmt.Sprintf("Edit record %d", editing.ID())))
	} else {
		b.WriteString(titleStyle.Render("New record"))
	}
	b.WriteString("\n\n")

	for i, f := range model.AllFields {
		focused := m.pane == PaneForm && i == m.field
		label := labelStyle.Render(f.Label())
		if focused {
			label = activeLabelStyle.Render(f.Label())
		}
		b.WriteString(label)
		b.WriteString(" ")
		if isChoice(f) {
			b.WriteString(m.viewChoice(f, focused))
		} else {
			b.WriteString(m.inputs[i].View())
		}
		b.WriteString("\n")
	}
	return b.String()
}

// viewChoice renders the selected state or district.
func (m Model) viewChoice(f model.Field, focused bool) string {
	value := m.ctrl.Draft().Get(f)
	text := value
	if f == model.State && value != "" {
		text = m.ctrl.StateName(value)
	}
	if text == "" {
		text = dimStyle.Render("Select " + strings.ToLower(f.Label()))
	}
	if focused {
		return "< " + text + " >"
	}
	return text
}

// viewTable renders the records of the current page and the paging footer.
func (m Model) viewTable() string {
	first, last, total := m.ctrl.PageRange()
	current, count := m.ctrl.Page()
	footer := dimStyle.Render(fmt.Sprintf("%d - %d of %d    page %d/%d    %d per page",
		first, last, total, current, max(count, 1), m.ctrl.PageSize()))
	return lipgloss.JoinVertical(lipgloss.Left, m.table.View(), "", footer)
}

// viewStatus renders the spinner while the store is busy, and the last message.
func (m Model) viewStatus() string {
	prefix := ""
	if m.loading || m.saving {
		prefix = m.spinner.View() + " "
	}
	if m.statusErr {
		return prefix + errorStyle.Render(m.status)
	}
	return prefix + successStyle.Render(m.status)
}

// Run starts the UI in the alternate screen and blocks until the user quits.
func Run(ctx context.Context, ctrl *controller.Controller, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(NewModel(ctx, ctrl), opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
