// internal/tui/app.go
//
// This is the main TUI for the catalog back office. It uses bubbletea, which
// follows The Elm Architecture:
//
// 1. Model: the App and the currently mounted screen
// 2. Update: applies a message (key press or network reply) to the state
// 3. View: renders the state to a string
//
// Network calls run inside tea.Cmd functions and come back as messages
// addressed to the screen that issued them.

package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/backoffice/internal/api"
	"github.com/kingrea/backoffice/internal/config"
	"github.com/kingrea/backoffice/internal/logbook"
	"github.com/kingrea/backoffice/internal/query"
)

const logPanelLines = 6

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithAPIClient replaces the client built from api.base_url.
func WithAPIClient(c *api.Client) AppOption {
	return func(a *App) {
		if c != nil {
			a.svc.api = c
		}
	}
}

// WithQueryClient shares an existing cache with the app.
func WithQueryClient(c *query.Client) AppOption {
	return func(a *App) {
		if c != nil {
			a.svc.cache = c
		}
	}
}

// WithContext sets the context network calls run under.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.svc.ctx = ctx
		}
	}
}

// WithNoticeTTL overrides ui.notice_ttl. Zero keeps notices until the next one.
func WithNoticeTTL(d time.Duration) AppOption {
	return func(a *App) {
		if d >= 0 {
			a.noticeTTL = d
		}
	}
}

// App is the root bubbletea model.
type App struct {
	svc *services

	menu    list.Model
	current screen
	nextID  int

	notice    notice
	noticeSeq int
	noticeTTL time.Duration
	showLogs  bool

	width  int
	height int
}

// menuItem implements list.Item for the main menu.
type menuItem struct {
	title string
	desc  string
	to    route
	quit  bool
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// NewApp loads configuration from projectDir and wires the API client, cache
// and logbook.
func NewApp(projectDir string, opts ...AppOption) (*App, error) {
	cfg, err := config.Load(projectDir)
	if err != nil {
		return nil, err
	}
	lb, err := logbook.New(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	menu := list.New(buildMainMenu(), list.NewDefaultDelegate(), 0, 0)
	menu.Title = "◆ CATALOG BACK OFFICE"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)

	app := &App{
		svc: &services{
			ctx:     context.Background(),
			config:  cfg,
			logbook: lb,
		},
		menu:      menu,
		noticeTTL: cfg.UI.NoticeTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	if app.svc.api == nil {
		client, err := api.New(cfg.API.BaseURL,
			api.WithTimeout(cfg.API.Timeout),
			api.WithToken(cfg.API.Token),
			api.WithLogger(lb.Logger()),
		)
		if err != nil {
			lb.Close()
			return nil, err
		}
		app.svc.api = client
	}
	if app.svc.cache == nil {
		app.svc.cache = query.New(query.WithLogger(lb.Logger()))
	}
	lb.Info("Session opened · api %s", cfg.API.BaseURL)
	return app, nil
}

func buildMainMenu() []list.Item {
	return []list.Item{
		menuItem{title: "Colors", desc: "Create, rename and delete colors", to: route{view: viewList, resource: resColors}},
		menuItem{title: "Sizes", desc: "Create, rename and delete sizes", to: route{view: viewList, resource: resSizes}},
		menuItem{title: "Product variants", desc: "Manage the color/size variants of a product", to: route{view: viewProductPrompt}},
		menuItem{title: "Exit", desc: "Quit the back office", quit: true},
	}
}

// Close releases the log file.
func (a *App) Close() {
	if a == nil || a.svc == nil {
		return
	}
	a.svc.logbook.Info("Session closed")
	a.svc.logbook.Close()
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.menu.SetSize(max(0, msg.Width-6), max(0, msg.Height-10))
		if a.current != nil {
			return a, a.current.Update(msg)
		}
		return a, nil

	case navigateMsg:
		return a, a.mount(msg.to)

	case noticeMsg:
		return a, a.showNotice(notice(msg))

	case noticeExpiredMsg:
		if msg.seq == a.noticeSeq {
			a.notice = notice{}
		}
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "ctrl+l":
			a.showLogs = !a.showLogs
			return a, nil
		}
		if a.current == nil {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "enter":
				return a.handleMainMenuSelection()
			}
		}
	}

	if sm, ok := msg.(screenMsg); ok {
		if a.current == nil || sm.screenID() != a.current.ID() {
			a.svc.logbook.Logger().Debug(fmt.Sprintf("tui: dropped reply for unmounted screen %d", sm.screenID()))
			return a, nil
		}
	}

	if a.current != nil {
		return a, a.current.Update(msg)
	}
	var cmd tea.Cmd
	a.menu, cmd = a.menu.Update(msg)
	return a, cmd
}

func (a *App) handleMainMenuSelection() (tea.Model, tea.Cmd) {
	item, ok := a.menu.SelectedItem().(menuItem)
	if !ok {
		return a, nil
	}
	a.svc.logbook.Info("Menu · %s selected", item.title)
	if item.quit {
		return a, tea.Quit
	}
	return a, a.mount(item.to)
}

// mount replaces the current screen. Every mount gets a new id, so replies
// still in flight for the previous screen are dropped when they arrive.
func (a *App) mount(to route) tea.Cmd {
	if to.view == viewMenu {
		a.current = nil
		return nil
	}
	a.nextID++
	next := a.build(a.nextID, to)
	if next == nil {
		return notifyError("Unknown screen " + to.String())
	}
	a.current = next
	a.svc.logbook.Logger().Debug("tui: mounted " + to.String())
	cmd := next.Init()
	if a.width > 0 && a.height > 0 {
		size := tea.WindowSizeMsg{Width: a.width, Height: a.height}
		return tea.Batch(cmd, next.Update(size))
	}
	return cmd
}

func (a *App) build(id int, to route) screen {
	switch to.view {
	case viewList:
		switch to.resource {
		case resColors:
			return newListView(id, a.svc, colorResource(a.svc.api))
		case resSizes:
			return newListView(id, a.svc, sizeResource(a.svc.api))
		}
	case viewCreate, viewEdit:
		recordID := int64(0)
		if to.view == viewEdit {
			recordID = to.recordID
		}
		switch to.resource {
		case resColors:
			return newFormView(id, a.svc, colorResource(a.svc.api), recordID)
		case resSizes:
			return newFormView(id, a.svc, sizeResource(a.svc.api), recordID)
		}
	case viewProductPrompt:
		return newProductPrompt(id, a.svc)
	case viewVariants:
		return newVariantView(id, a.svc, to.productID)
	}
	return nil
}

func (a *App) showNotice(n notice) tea.Cmd {
	a.noticeSeq++
	a.notice = n
	if n.kind == noticeError {
		a.svc.logbook.Error("%s", n.text)
	} else {
		a.svc.logbook.Info("%s", n.text)
	}
	if a.noticeTTL <= 0 {
		return nil
	}
	seq := a.noticeSeq
	return tea.Tick(a.noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	height := a.height
	if height <= 0 {
		height = 30
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(errorColor).
		MarginBottom(1).
		Render("◆ BACK OFFICE")

	var content, help string
	if a.current == nil {
		content = a.menu.View()
		help = "enter select · ctrl+l logs · q quit"
	} else {
		content = a.current.View(width-4, height-8)
		help = a.current.Help() + " · ctrl+l logs"
	}

	parts := []string{header, content, "", a.renderNotice()}
	if a.showLogs {
		parts = append(parts, a.renderLogPanel(width-4))
	}
	parts = append(parts, hintStyle.Render(help))
	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (a *App) renderNotice() string {
	text := strings.TrimSpace(a.notice.text)
	if text == "" {
		return ""
	}
	if a.notice.kind == noticeError {
		return errorStyle.Render("✗ " + text)
	}
	return successStyle.Render("✓ " + text)
}

func (a *App) renderLogPanel(width int) string {
	lines, total := a.svc.logbook.Tail(logPanelLines)
	fileName := filepath.Base(a.svc.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(accentColor).
		Render(fmt.Sprintf("LOG · %s · %d lines", fileName, total))
	body := hintStyle.Render(strings.Join(lines, "\n"))
	if len(lines) == 0 {
		body = hintStyle.Render("(empty)")
	}
	return boxStyle.Width(max(20, width)).Render(head + "\n" + body)
}
