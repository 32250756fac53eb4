package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-faster/errors"

	"github.com/kingrea/backoffice/internal/api"
	"github.com/kingrea/backoffice/internal/form"
)

type recordLoadedMsg[T any] struct {
	addr
	seq    int
	record T
	err    error
}

type recordSavedMsg struct {
	addr
	err error
}

// formView creates a record (recordID == 0) or edits an existing one.
type formView[T namedRecord, D any] struct {
	id       int
	svc      *services
	res      namedResource[T, D]
	recordID int64

	state loadState
	err   error
	input textinput.Model
	errs  form.Errors

	// fetchSeq numbers edit fetches; hydrated is the last one copied into
	// the input.
	fetchSeq int
	hydrated int
	pending  bool
}

func newFormView[T namedRecord, D any](id int, svc *services, res namedResource[T, D], recordID int64) *formView[T, D] {
	input := newTextInput(res.singular+" name", 40)
	return &formView[T, D]{id: id, svc: svc, res: res, recordID: recordID, input: input}
}

func (v *formView[T, D]) ID() int { return v.id }

func (v *formView[T, D]) editing() bool { return v.recordID > 0 }

func (v *formView[T, D]) Title() string {
	if v.editing() {
		return "Edit " + strings.ToLower(v.res.singular)
	}
	return "New " + strings.ToLower(v.res.singular)
}

func (v *formView[T, D]) Help() string {
	if v.state == stateFailed {
		return "esc back"
	}
	if v.editing() {
		return "enter save · ctrl+r reload · esc back"
	}
	return "enter save · esc back"
}

func (v *formView[T, D]) Init() tea.Cmd {
	if !v.editing() {
		v.state = stateReady
		return v.input.Focus()
	}
	v.state = stateLoading
	return v.fetch()
}

func (v *formView[T, D]) fetch() tea.Cmd {
	v.fetchSeq++
	id, seq, svc, res, recordID := v.id, v.fetchSeq, v.svc, v.res, v.recordID
	return func() tea.Msg {
		record, err := res.get(svc, recordID)
		return recordLoadedMsg[T]{addr: addr{id}, seq: seq, record: record, err: err}
	}
}

func (v *formView[T, D]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case recordLoadedMsg[T]:
		if msg.seq != v.fetchSeq {
			return nil
		}
		if msg.err != nil {
			v.state = stateFailed
			v.err = msg.err
			return nil
		}
		v.state = stateReady
		if v.hydrated != msg.seq {
			v.hydrated = msg.seq
			v.input.SetValue(msg.record.Label())
			v.input.CursorEnd()
			v.errs = nil
		}
		return v.input.Focus()

	case recordSavedMsg:
		v.pending = false
		if msg.err != nil {
			return notifyError(api.Message(msg.err))
		}
		verb := " created"
		if v.editing() {
			verb = " updated"
		}
		return tea.Batch(
			notifySuccess(v.res.singular+verb),
			navigate(route{view: viewList, resource: v.res.name}),
		)

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return navigate(route{view: viewList, resource: v.res.name})
		case "ctrl+r":
			if v.editing() && !v.pending {
				v.svc.cache.Invalidate(v.res.recordKey(v.recordID))
				v.state = stateLoading
				return v.fetch()
			}
			return nil
		case "enter":
			return v.submit()
		}
		if v.state != stateReady {
			return nil
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return cmd
	}
	if v.state == stateReady {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return cmd
	}
	return nil
}

func (v *formView[T, D]) submit() tea.Cmd {
	if v.pending || v.state != stateReady {
		return nil
	}
	draft := v.res.newDraft(v.input.Value())
	if errs := form.Validate(draft); errs != nil {
		v.errs = errs
		return nil
	}
	v.errs = nil
	v.pending = true
	id, svc, res, recordID := v.id, v.svc, v.res, v.recordID
	return func() tea.Msg {
		var err error
		if recordID > 0 {
			_, err = res.update(svc, recordID, draft)
		} else {
			_, err = res.create(svc, draft)
		}
		return recordSavedMsg{addr: addr{id}, err: err}
	}
}

func (v *formView[T, D]) View(width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(v.Title()))
	b.WriteString("\n")
	switch v.state {
	case stateLoading:
		b.WriteString(hintStyle.Render("Loading..."))
		return b.String()
	case stateFailed:
		if errors.Is(v.err, api.ErrNotFound) {
			b.WriteString(errorStyle.Render(v.res.singular + " not found."))
		} else {
			b.WriteString(errorStyle.Render("Failed to load: " + api.Message(v.err)))
		}
		return b.String()
	}
	b.WriteString(focusedLabelStyle.Render("Name"))
	b.WriteString(boxStyle.Render(v.input.View()))
	if msg, ok := v.errs["name"]; ok {
		b.WriteString("\n")
		b.WriteString(renderFieldError(msg))
	}
	if v.pending {
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("Saving..."))
	}
	return b.String()
}
