package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/backoffice/internal/api"
)

type loadState int

const (
	stateLoading loadState = iota
	stateReady
	stateFailed
)

type listLoadedMsg[T any] struct {
	addr
	items []T
	err   error
}

type recordDeletedMsg struct {
	addr
	id    int64
	label string
	err   error
}

// listView shows every record of a named resource in a table.
type listView[T namedRecord, D any] struct {
	id    int
	svc   *services
	res   namedResource[T, D]
	state loadState
	items []T
	err   error
	table table.Model

	confirm  *T
	deleting bool
}

func newListView[T namedRecord, D any](id int, svc *services, res namedResource[T, D]) *listView[T, D] {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 8},
			{Title: "Name", Width: 40},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles())
	return &listView[T, D]{id: id, svc: svc, res: res, table: t}
}

func (v *listView[T, D]) ID() int       { return v.id }
func (v *listView[T, D]) Title() string { return v.res.plural }

func (v *listView[T, D]) Help() string {
	if v.confirm != nil {
		return "y confirm delete · n/esc cancel"
	}
	return "n new · e/enter edit · d delete · r refresh · esc back"
}

func (v *listView[T, D]) Init() tea.Cmd {
	v.state = stateLoading
	return v.fetch()
}

func (v *listView[T, D]) fetch() tea.Cmd {
	id, svc, res := v.id, v.svc, v.res
	return func() tea.Msg {
		items, err := res.list(svc)
		return listLoadedMsg[T]{addr: addr{id}, items: items, err: err}
	}
}

func (v *listView[T, D]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case listLoadedMsg[T]:
		if msg.err != nil {
			v.state = stateFailed
			v.err = msg.err
			return nil
		}
		v.state = stateReady
		v.err = nil
		v.items = msg.items
		v.syncRows()
		return nil

	case recordDeletedMsg:
		v.deleting = false
		if msg.err != nil {
			return notifyError(fmt.Sprintf("Could not delete %s: %s", msg.label, api.Message(msg.err)))
		}
		v.state = stateLoading
		return tea.Batch(notifySuccess(v.res.singular+" deleted"), v.fetch())

	case tea.WindowSizeMsg:
		v.table.SetHeight(max(3, msg.Height-12))
		return nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return nil
}

func (v *listView[T, D]) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if v.confirm != nil {
		switch key {
		case "y":
			target := *v.confirm
			v.confirm = nil
			if v.deleting {
				return nil
			}
			v.deleting = true
			return v.remove(target)
		case "n", "esc":
			v.confirm = nil
		}
		return nil
	}
	switch key {
	case "esc":
		return navigate(route{view: viewMenu})
	case "n":
		return navigate(route{view: viewCreate, resource: v.res.name})
	case "r":
		v.svc.cache.Invalidate(v.res.listKey())
		v.state = stateLoading
		return v.fetch()
	case "e", "enter":
		if item, ok := v.selected(); ok {
			return navigate(route{view: viewEdit, resource: v.res.name, recordID: item.RecordID()})
		}
		return nil
	case "d":
		if item, ok := v.selected(); ok && !v.deleting {
			v.confirm = &item
		}
		return nil
	}
	if v.state == stateReady {
		var cmd tea.Cmd
		v.table, cmd = v.table.Update(msg)
		return cmd
	}
	return nil
}

func (v *listView[T, D]) remove(item T) tea.Cmd {
	id, svc, res := v.id, v.svc, v.res
	return func() tea.Msg {
		err := res.remove(svc, item.RecordID())
		return recordDeletedMsg{addr: addr{id}, id: item.RecordID(), label: item.Label(), err: err}
	}
}

func (v *listView[T, D]) selected() (T, bool) {
	var zero T
	if v.state != stateReady || len(v.items) == 0 {
		return zero, false
	}
	idx := v.table.Cursor()
	if idx < 0 || idx >= len(v.items) {
		return zero, false
	}
	return v.items[idx], true
}

func (v *listView[T, D]) syncRows() {
	rows := make([]table.Row, 0, len(v.items))
	for _, item := range v.items {
		rows = append(rows, table.Row{strconv.FormatInt(item.RecordID(), 10), item.Label()})
	}
	v.table.SetRows(rows)
	if cursor := v.table.Cursor(); cursor >= len(rows) {
		v.table.SetCursor(max(0, len(rows)-1))
	}
}

func (v *listView[T, D]) View(width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(v.res.plural))
	b.WriteString("\n")
	switch v.state {
	case stateLoading:
		b.WriteString(hintStyle.Render("Loading " + strings.ToLower(v.res.plural) + "..."))
	case stateFailed:
		b.WriteString(errorStyle.Render("Failed to load: " + api.Message(v.err)))
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("Press r to retry."))
	case stateReady:
		if len(v.items) == 0 {
			b.WriteString(hintStyle.Render("No " + strings.ToLower(v.res.plural) + " yet. Press n to create one."))
			break
		}
		b.WriteString(v.table.View())
	}
	if v.confirm != nil {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Delete %s %q? (y/n)", strings.ToLower(v.res.singular), (*v.confirm).Label())))
	}
	return b.String()
}
