// internal/tui/app.go
//
// Inspector for a running augmentation runtime. It lists loaded tenants on the
// left and, for the selected tenant, its definitions with their companion
// back-references and the companions registered for it.
//
// The flow is the usual bubbletea loop: key -> Update -> new state -> View.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/companions/internal/augment"
	"github.com/kingrea/companions/internal/content"
	"github.com/kingrea/companions/internal/logbook"
)

type focus int

const (
	focusTenants focus = iota
	focusDefinitions
)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithLogbook shows the tail of the diagnostic log under the board.
func WithLogbook(book *logbook.Logbook) AppOption {
	return func(a *App) { a.logbook = book }
}

// tenantItem implements list.Item for the tenant menu.
type tenantItem struct {
	name string
	desc string
}

func (i tenantItem) Title() string       { return i.name }
func (i tenantItem) Description() string { return i.desc }
func (i tenantItem) FilterValue() string { return i.name }

// App is the inspector model.
type App struct {
	runtime *augment.Runtime
	logbook *logbook.Logbook

	tenants   list.Model
	focus     focus
	selection int
	spawned   map[string]*content.Entity
	statusMsg string
	err       error

	width  int
	height int
}

// NewApp creates an inspector over rt.
func NewApp(rt *augment.Runtime, opts ...AppOption) *App {
	menu := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	menu.Title = "Tenants"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)

	app := &App{
		runtime: rt,
		tenants: menu,
		spawned: map[string]*content.Entity{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.refresh()
	return app
}

func (a *App) refresh() {
	names := a.runtime.Tenants()
	items := make([]list.Item, 0, len(names))
	for _, name := range names {
		items = append(items, tenantItem{name: name, desc: a.tenantSummary(name)})
	}
	a.tenants.SetItems(items)
	if defs := a.definitions(); a.selection >= len(defs) {
		a.selection = max(0, len(defs)-1)
	}
}

func (a *App) tenantSummary(name string) string {
	report, ok := a.runtime.Coordinator().State().Report(name)
	if !ok {
		return "not augmented"
	}
	summary := fmt.Sprintf("%d companions", report.Registered())
	if report.Skipped > 0 {
		summary += fmt.Sprintf(", %d skipped", report.Skipped)
	}
	if report.Err != nil {
		summary += ", errors"
	}
	return summary
}

func (a *App) selectedTenant() string {
	item, ok := a.tenants.SelectedItem().(tenantItem)
	if !ok {
		return ""
	}
	return item.name
}

func (a *App) definitions() []*content.Definition {
	tenant := a.selectedTenant()
	if tenant == "" {
		return nil
	}
	return a.runtime.Host().Definitions(tenant)
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.tenants.SetSize(max(20, msg.Width/3), max(0, msg.Height-10))
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "r":
			a.refresh()
			a.statusMsg = "Refreshed"
			return a, nil
		case "tab", "right", "l":
			if len(a.definitions()) > 0 {
				a.focus = focusDefinitions
			}
			return a, nil
		case "esc", "left", "h":
			a.focus = focusTenants
			return a, nil
		case "s":
			a.spawnSelected()
			return a, nil
		case "u":
			a.unloadSelected()
			return a, nil
		case "up", "k":
			if a.focus == focusDefinitions {
				if a.selection > 0 {
					a.selection--
				}
				return a, nil
			}
		case "down", "j":
			if a.focus == focusDefinitions {
				if a.selection < len(a.definitions())-1 {
					a.selection++
				}
				return a, nil
			}
		}
	}

	if a.focus != focusTenants {
		return a, nil
	}
	before := a.selectedTenant()
	var cmd tea.Cmd
	a.tenants, cmd = a.tenants.Update(msg)
	if a.selectedTenant() != before {
		a.selection = 0
	}
	return a, cmd
}

func (a *App) spawnSelected() {
	defs := a.definitions()
	if a.selection >= len(defs) {
		return
	}
	def := defs[a.selection]
	e, err := a.runtime.Spawn(def.Tenant, def.Name)
	if err != nil {
		a.err = err
		return
	}
	a.err = nil
	a.spawned[def.FullName()] = e
	a.statusMsg = fmt.Sprintf("Finalized %s", def.FullName())
}

func (a *App) unloadSelected() {
	tenant := a.selectedTenant()
	if tenant == "" {
		return
	}
	if err := a.runtime.Unload(tenant); err != nil {
		a.err = err
		return
	}
	a.err = nil
	for key := range a.spawned {
		if strings.HasPrefix(key, tenant+"/") {
			delete(a.spawned, key)
		}
	}
	a.focus = focusTenants
	a.selection = 0
	a.statusMsg = fmt.Sprintf("Unloaded %s", tenant)
	a.refresh()
}
