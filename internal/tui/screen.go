package tui

import (
	"context"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/backoffice/internal/api"
	"github.com/kingrea/backoffice/internal/config"
	"github.com/kingrea/backoffice/internal/logbook"
	"github.com/kingrea/backoffice/internal/query"
)

// services are shared by every screen. Screens never keep their own copies of
// server state; they read through cache and write through query.Mutate.
type services struct {
	ctx     context.Context
	config  *config.Config
	api     *api.Client
	cache   *query.Client
	logbook *logbook.Logbook
}

// screen is one mounted view. Each mount gets a fresh id; messages produced
// by its commands carry that id so the shell can drop replies that arrive
// after the screen was replaced.
type screen interface {
	ID() int
	Title() string
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width, height int) string
	Help() string
}

// screenMsg is implemented by every message addressed to a mounted screen.
type screenMsg interface {
	screenID() int
}

// addr is embedded in async replies.
type addr struct {
	screen int
}

func (a addr) screenID() int { return a.screen }

type viewKind int

const (
	viewMenu viewKind = iota
	viewList
	viewCreate
	viewEdit
	viewProductPrompt
	viewVariants
)

type resourceName string

const (
	resColors resourceName = "colors"
	resSizes  resourceName = "sizes"
)

// route names a screen to mount.
type route struct {
	view      viewKind
	resource  resourceName
	recordID  int64
	productID int64
}

func (r route) String() string {
	switch r.view {
	case viewList:
		return string(r.resource)
	case viewCreate:
		return string(r.resource) + "/new"
	case viewEdit:
		return string(r.resource) + "/" + strconv.FormatInt(r.recordID, 10)
	case viewProductPrompt:
		return "products"
	case viewVariants:
		return "products/" + strconv.FormatInt(r.productID, 10) + "/variants"
	default:
		return "menu"
	}
}

type navigateMsg struct {
	to route
}

func navigate(to route) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: to} }
}

type noticeKind int

const (
	noticeSuccess noticeKind = iota
	noticeError
)

type notice struct {
	kind noticeKind
	text string
}

type noticeMsg notice

type noticeExpiredMsg struct {
	seq int
}

func notify(kind noticeKind, text string) tea.Cmd {
	return func() tea.Msg { return noticeMsg{kind: kind, text: text} }
}

func notifySuccess(text string) tea.Cmd { return notify(noticeSuccess, text) }

func notifyError(text string) tea.Cmd { return notify(noticeError, text) }
