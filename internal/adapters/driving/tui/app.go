package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/components/status"
	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/keymap"
	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/messages"
	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/styles"
	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/views/choose"
	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/views/history"
	"github.com/HMaxF/jesoes.com/internal/adapters/driving/tui/views/read"
	"github.com/HMaxF/jesoes.com/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap
	status *status.Bar

	chooseView  *choose.View
	readView    *read.View
	historyView *history.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// previousView is restored when help is closed.
	previousView messages.ViewType

	// welcome shows the first-run notice until a key is pressed.
	welcome bool

	// syncing is true while a network pass runs.
	syncing bool

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		status:      status.NewBar(s, km),
		chooseView:  choose.NewView(s, km, ports.Reader, ports.Selection),
		readView:    read.NewView(s, km, ports.Reader, ports.Selection),
		historyView: history.NewView(s, km, ports.Reader, ports.Selection),
		currentView: messages.ViewChoose,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chooseView.WithContext(ctx)
	a.readView.WithContext(ctx)
	a.historyView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It loads the cache first so reading can start before the network answers.
func (a *App) Init() tea.Cmd {
	_, acknowledged := a.ports.Selection.WelcomeAcknowledgedAt(a.ctx)
	a.welcome = !acknowledged

	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("jesoes"),
		a.loadCache(),
	)
}

func (a *App) loadCache() tea.Cmd {
	ctx, sync := a.ctx, a.ports.Sync
	return func() tea.Msg {
		report, err := sync.LoadCached(ctx)
		return messages.CacheLoaded{Report: report, Err: err}
	}
}

func (a *App) startSync() tea.Cmd {
	if a.syncing {
		return nil
	}
	a.syncing = true
	a.status.SetState(status.StateSyncing)

	ctx, sync := a.ctx, a.ports.Sync
	return func() tea.Msg {
		report, err := sync.Sync(ctx)
		return messages.SyncCompleted{Report: report, Err: err}
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.CacheLoaded:
		if msg.Err != nil {
			a.fail(msg.Err)
			if isStorageError(msg.Err) {
				a.status.SetMessage("cache was reset, press r to retry")
			}
			return a, nil
		}
		a.restore()
		return a, a.startSync()

	case messages.SyncCompleted:
		a.syncing = false
		if msg.Err != nil {
			a.fail(msg.Err)
			return a, nil
		}
		a.refresh()
		a.status.SetState(a.idleState())
		if msg.Report != nil && len(msg.Report.Failures) > 0 {
			a.status.SetMessage(fmt.Sprintf("%d document sets failed to load", len(msg.Report.Failures)))
		} else {
			a.status.SetMessage("")
		}
		return a, nil

	case messages.SelectionChanged:
		a.refresh()
		a.status.SetMessage(fmt.Sprintf("Primary set: %s", msg.Primary))
		return a, nil

	case messages.PositionSelected:
		cmd = a.readView.GoTo(msg.Position)
		return a, tea.Batch(cmd, a.switchTo(messages.ViewRead))

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.ErrorOccurred:
		a.fail(msg.Err)
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	if k == "ctrl+c" {
		return a, tea.Quit
	}

	if a.welcome {
		a.welcome = false
		if err := a.ports.Selection.AcknowledgeWelcome(a.ctx); err != nil {
			a.fail(err)
		}
		return a, nil
	}

	if a.currentView == messages.ViewHelp {
		if keymap.Matches(k, a.keymap.Back) || keymap.Matches(k, a.keymap.Help) {
			a.currentView = a.previousView
			a.status.SetState(a.idleState())
		}
		return a, nil
	}

	switch {
	case keymap.Matches(k, a.keymap.Quit):
		return a, tea.Quit
	case keymap.Matches(k, a.keymap.Help):
		a.previousView = a.currentView
		a.currentView = messages.ViewHelp
		a.status.SetState(status.StateHelp)
		return a, nil
	case keymap.Matches(k, a.keymap.NextTab):
		return a, a.switchTo(a.adjacentTab(1))
	case keymap.Matches(k, a.keymap.PrevTab):
		return a, a.switchTo(a.adjacentTab(-1))
	case keymap.Matches(k, a.keymap.Sync):
		return a, a.startSync()
	}

	// Esc returns to the choose tab from the others.
	if keymap.Matches(k, a.keymap.Back) && a.currentView != messages.ViewChoose {
		return a, a.switchTo(messages.ViewChoose)
	}

	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewChoose:
		a.chooseView, cmd = a.chooseView.Update(msg)
	case messages.ViewRead:
		a.readView, cmd = a.readView.Update(msg)
	case messages.ViewHistory:
		a.historyView, cmd = a.historyView.Update(msg)
	case messages.ViewHelp:
		// handled above
	}
	return a, cmd
}

// switchTo activates a tab and persists it.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.currentView = view
	if view == messages.ViewHistory {
		a.historyView.Refresh()
	}
	a.status.SetState(a.idleState())

	tab, ok := view.Tab()
	if !ok {
		return nil
	}
	if err := a.ports.Selection.SetSelectedTab(a.ctx, tab); err != nil {
		return func() tea.Msg { return messages.ErrorOccurred{Err: err} }
	}
	return nil
}

func (a *App) adjacentTab(step int) messages.ViewType {
	tabs := messages.Tabs()
	for i, v := range tabs {
		if v == a.currentView {
			return tabs[(i+step+len(tabs))%len(tabs)]
		}
	}
	return tabs[0]
}

// restore reapplies the persisted tab and position after the cache loads.
func (a *App) restore() {
	a.currentView = messages.ViewForTab(a.ports.Selection.SelectedTab(a.ctx))
	a.readView.Show(a.ports.Selection.CurrentPosition(a.ctx))
	a.refresh()
}

func (a *App) refresh() {
	a.chooseView.Refresh()
	a.readView.Refresh()
	a.historyView.Refresh()

	primary := ""
	if p, ok := a.ports.Reader.Primary(); ok {
		primary = p.Code
	}
	a.status.SetLibrary(len(a.ports.Reader.Documents()), primary)
}

func (a *App) fail(err error) {
	a.err = err
	a.status.SetState(status.StateError)
	a.status.SetMessage(err.Error())
}

func (a *App) idleState() status.State {
	switch {
	case a.syncing:
		return status.StateSyncing
	case a.currentView == messages.ViewRead:
		return status.StateReading
	default:
		return status.StateReady
	}
}

func isStorageError(err error) bool {
	return errors.Is(err, domain.ErrStorageUnavailable)
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch {
	case a.welcome:
		body = a.viewWelcome()
	case a.currentView == messages.ViewHelp:
		body = a.viewHelp()
	case a.currentView == messages.ViewRead:
		body = a.readView.View()
	case a.currentView == messages.ViewHistory:
		body = a.historyView.View()
	default:
		body = a.chooseView.View()
	}

	return a.viewTabs() + "\n\n" + body + "\n" + a.status.View()
}

func (a *App) viewTabs() string {
	labels := make([]string, 0, len(messages.Tabs()))
	for _, v := range messages.Tabs() {
		if v == a.currentView {
			labels = append(labels, a.styles.TabActive.Render(v.String()))
		} else {
			labels = append(labels, a.styles.TabInactive.Render(v.String()))
		}
	}
	return strings.Join(labels, " ")
}

func (a *App) viewWelcome() string {
	return a.styles.Title.Render("Welcome to jesoes") + "\n\n" +
		a.styles.Normal.Render("Translations are downloaded once and kept on this machine.\n"+
			"Pick a primary set on the choose tab and add others to read side by side.") + "\n\n" +
		a.styles.Help.Render("Press any key to continue.")
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			b.WriteString(helpLine(binding))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Help.Render("[esc] back"))
	return b.String()
}

func helpLine(b key.Binding) string {
	h := b.Help()
	return fmt.Sprintf("  %-12s %s\n", h.Key, h.Desc)
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// Welcome reports whether the first-run notice is showing.
func (a *App) Welcome() bool {
	return a.welcome
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.status.SetWidth(width)
	a.chooseView.SetDimensions(width, height)
	a.readView.SetDimensions(width, height)
	a.historyView.SetDimensions(width, height)
}
