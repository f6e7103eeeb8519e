package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/poku-e/kitchen/internal/datasync"
	"github.com/poku-e/kitchen/internal/model"
	"github.com/poku-e/kitchen/internal/view"
)

const (
	inventoryHelp = "↑/↓ move • / search • s sort • a add • e edit • x decrement • d delete • r reload • q quit"
	stockFormHelp = "tab next field • enter save • esc cancel"
	decrementHelp = "enter decrement • ctrl+d delete item • esc close"
	searchHelp    = "type to filter • enter done • esc clear"
)

// InventoryModel is the stock manager screen.
type InventoryModel struct {
	ctx      context.Context
	store    *datasync.Inventory
	styles   Styles
	renderer view.StockRenderer
	logger   *zap.Logger

	// all is the cache in the order it arrived or was last sorted; shown is
	// all narrowed by the current query.
	all    []model.StockItem
	shown  []model.StockItem
	table  view.StockTable
	cursor int
	sorter view.Sorter

	search    textinput.Model
	searching bool

	dialog  view.Dialog[model.StockItem]
	form    fields
	formErr string

	decrement view.DecrementDialog
	amount    textinput.Model

	confirmID string
	loading   bool
	busy      bool
	spinner   spinner.Model
}

func NewInventoryModel(ctx context.Context, store *datasync.Inventory, styles Styles, renderer view.StockRenderer, logger *zap.Logger) InventoryModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := InventoryModel{
		ctx:      ctx,
		store:    store,
		styles:   styles,
		renderer: renderer,
		logger:   logger,
		search:   newInput("Search by name…", ""),
		amount:   newInput("1", ""),
		loading:  true,
		spinner:  newSpinner(styles),
	}
	m.refresh()
	return m
}

func (m InventoryModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.spinner.Tick)
}

func (m InventoryModel) load() tea.Cmd {
	return run(m.ctx, opLoad, m.store.List)
}

// refresh recomputes the visible rows from all and the query.
func (m *InventoryModel) refresh() {
	m.shown = view.Filter(m.all, m.search.Value())
	m.table = m.renderer.Table(m.shown)
	m.cursor = clampCursor(m.cursor, len(m.shown))
}

func (m InventoryModel) selected() (model.StockItem, bool) {
	if len(m.shown) == 0 {
		return model.StockItem{}, false
	}
	return m.shown[m.cursor], true
}

func (m InventoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = tick(m.spinner, m.loading || m.busy, msg)
		return m, cmd
	case resultMsg[model.StockItem]:
		return m.handleResult(msg), nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m InventoryModel) handleResult(msg resultMsg[model.StockItem]) InventoryModel {
	if msg.err != nil {
		m.logger.Warn("Request failed", zap.Stringer("op", msg.op), zap.Error(msg.err))
	}
	switch msg.op {
	case opLoad:
		m.loading = false
	case opSave:
		m.busy = false
		if msg.err == nil {
			m.dialog = m.dialog.Close()
			m.form = fields{}
			m.formErr = ""
		}
	case opDecrement:
		m.busy = false
		if msg.err == nil {
			m.decrement = m.decrement.Close()
		}
	case opDelete:
		m.busy = false
		m.confirmID = ""
		if msg.err == nil {
			m.decrement = m.decrement.Close()
		}
	}
	if msg.err == nil {
		m.all = msg.items
		m.refresh()
	}
	return m
}

func (m InventoryModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	if k == "ctrl+c" {
		return m, tea.Quit
	}
	switch {
	case m.confirmID != "":
		return m.handleConfirm(k)
	case m.dialog.IsOpen():
		return m.handleForm(msg)
	case m.decrement.IsOpen():
		return m.handleDecrement(msg)
	case m.searching:
		return m.handleSearch(msg)
	}

	switch k {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.cursor = clampCursor(m.cursor-1, len(m.shown))
	case "down", "j":
		m.cursor = clampCursor(m.cursor+1, len(m.shown))
	case "/":
		m.searching = true
		m.search.Focus()
	case "s":
		m.all = m.sorter.Next(m.all)
		m.refresh()
	case "a":
		m.dialog = m.dialog.OpenCreate()
		m.openForm(view.StockForm{Unit: string(model.Units[0])})
	case "e":
		if it, ok := m.selected(); ok {
			m.dialog = m.dialog.OpenEdit(it.ID, it)
			m.openForm(view.StockFormFrom(it))
		}
	case "x":
		if it, ok := m.selected(); ok {
			m.decrement = view.OpenDecrement(it.ID, it.Name)
			m.amount.SetValue("")
			m.amount.Focus()
		}
	case "d":
		if it, ok := m.selected(); ok {
			m.confirmID = it.ID
		}
	case "r":
		if !m.loading {
			m.loading = true
			return m, tea.Batch(m.load(), m.spinner.Tick)
		}
	}
	return m, nil
}

func (m InventoryModel) handleSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.refresh()
	return m, cmd
}

func (m InventoryModel) handleConfirm(k string) (tea.Model, tea.Cmd) {
	switch {
	case m.busy:
	case isYes(k):
		m.busy = true
		id := m.confirmID
		return m, tea.Batch(run(m.ctx, opDelete, func(ctx context.Context) ([]model.StockItem, error) {
			return m.store.Remove(ctx, id, datasync.Confirmed)
		}), m.spinner.Tick)
	case isNo(k):
		m.confirmID = ""
	}
	return m, nil
}

func (m InventoryModel) handleDecrement(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.busy {
			return m, nil
		}
		m.decrement = m.decrement.Close()
		m.amount.Blur()
		return m, nil
	case "ctrl+d":
		m.confirmID = m.decrement.ItemID
		return m, nil
	case "enter":
		if m.busy {
			return m, nil
		}
		m.busy = true
		id, amount := m.decrement.ItemID, view.ParseAmount(m.amount.Value())
		return m, tea.Batch(run(m.ctx, opDecrement, func(ctx context.Context) ([]model.StockItem, error) {
			return m.store.Decrement(ctx, id, amount)
		}), m.spinner.Tick)
	}
	var cmd tea.Cmd
	m.amount, cmd = m.amount.Update(msg)
	return m, cmd
}

func (m *InventoryModel) openForm(f view.StockForm) {
	var fs fields
	fs.add("Name", "Flour", f.Name)
	fs.add("Category", "Dry goods", f.Category)
	fs.add("Unit", unitHint, f.Unit)
	fs.add("Quantity", "0", f.Quantity)
	fs.add("Unit cost", "0", f.UnitCost)
	fs.focusOn(0)
	m.form = fs
	m.formErr = ""
}

func stockFormOf(fs fields) view.StockForm {
	return view.StockForm{
		Name:     fs.value(0),
		Category: fs.value(1),
		Unit:     fs.value(2),
		Quantity: fs.value(3),
		UnitCost: fs.value(4),
	}
}

func (m InventoryModel) handleForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	switch {
	case k == "esc" && m.busy:
		return m, nil
	case k == "esc":
		m.dialog = m.dialog.Close()
		m.form = fields{}
		m.formErr = ""
		return m, nil
	case k == "enter":
		return m.submit()
	case isNavKey(k):
		m.form.navigate(k)
		return m, nil
	}
	return m, m.form.update(msg)
}

// submit is a no-op while a save is in flight.
func (m InventoryModel) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	item, err := stockFormOf(m.form).Item()
	if err != nil {
		m.formErr = err.Error()
		m.logger.Warn("Invalid item form", zap.Error(err))
		return m, nil
	}
	m.formErr = ""
	m.busy = true
	id := m.dialog.TargetID()
	return m, tea.Batch(run(m.ctx, opSave, func(ctx context.Context) ([]model.StockItem, error) {
		return m.store.Save(ctx, id, item)
	}), m.spinner.Tick)
}

func (m InventoryModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("Inventory") + "\n\n")

	switch {
	case m.dialog.IsOpen():
		sb.WriteString(m.formView())
	case m.decrement.IsOpen():
		sb.WriteString(m.decrementView())
	case m.loading && len(m.all) == 0:
		sb.WriteString(m.spinner.View() + " Loading inventory…\n")
	default:
		if m.searching || m.search.Value() != "" {
			sb.WriteString(m.search.View() + "\n\n")
		}
		sb.WriteString(StockTableView{Headers: view.StockHeaders, Table: m.table, Cursor: m.cursor}.View(m.styles))
		order := "asc"
		if !m.sorter.Ascending() {
			order = "desc"
		}
		sb.WriteString("\n" + m.styles.Total.Render("Total inventory value: "+m.table.Total))
		sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("   (%d of %d items, next sort %s)", len(m.shown), len(m.all), order)) + "\n")
	}

	if m.confirmID != "" {
		prompt := "Are you sure you want to delete this item? (y/n)"
		if m.busy {
			prompt = m.spinner.View() + " Deleting…"
		}
		sb.WriteString("\n" + m.styles.Error.Render(prompt) + "\n")
	}

	help := inventoryHelp
	switch {
	case m.dialog.IsOpen():
		help = stockFormHelp
	case m.decrement.IsOpen():
		help = decrementHelp
	case m.searching:
		help = searchHelp
	}
	sb.WriteString("\n" + m.styles.Footer.Render(help))
	return sb.String()
}

func (m InventoryModel) formView() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(m.dialog.Title("Item")) + "\n")
	sb.WriteString(m.form.view(m.styles) + "\n")
	if m.formErr != "" {
		sb.WriteString("\n" + m.styles.Error.Render(m.formErr) + "\n")
	}
	if m.busy {
		sb.WriteString("\n" + m.spinner.View() + " Saving…\n")
	}
	return m.styles.Dialog.Render(strings.TrimRight(sb.String(), "\n"))
}

func (m InventoryModel) decrementView() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Use stock: "+m.decrement.Name) + "\n")
	sb.WriteString(m.styles.Label.Render("Amount") + m.amount.View() + "\n")
	if m.busy {
		sb.WriteString("\n" + m.spinner.View() + " Updating…\n")
	}
	return m.styles.Dialog.Render(strings.TrimRight(sb.String(), "\n"))
}

// RunInventory runs the stock manager until the user quits or ctx ends.
func RunInventory(ctx context.Context, store *datasync.Inventory, styles Styles, renderer view.StockRenderer, logger *zap.Logger) error {
	p := tea.NewProgram(NewInventoryModel(ctx, store, styles, renderer, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("inventory ui: %w", err)
	}
	return nil
}
