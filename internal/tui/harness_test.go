package tui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"

	"github.com/kingrea/backoffice/internal/api"
	"github.com/kingrea/backoffice/internal/stubapi"
)

type harness struct {
	t     *testing.T
	app   *App
	store *stubapi.Store
	dir   string

	mu       sync.Mutex
	requests []string
}

func newHarness(t *testing.T, store *stubapi.Store) *harness {
	t.Helper()
	return newHarnessIn(t, t.TempDir(), store)
}

func newHarnessIn(t *testing.T, dir string, store *stubapi.Store) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := &harness{t: t, store: store, dir: dir}
	router := stubapi.NewRouter(store, 10, nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.requests = append(h.requests, r.Method+" "+r.URL.RequestURI())
		h.mu.Unlock()
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	client, err := api.New(srv.URL, api.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("api client: %v", err)
	}
	app, err := NewApp(dir, WithAPIClient(client), WithNoticeTTL(0))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(app.Close)
	h.app = app
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

// count returns how many requests matched method and path prefix.
func (h *harness) count(method, prefix string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, r := range h.requests {
		if strings.HasPrefix(r, method+" "+prefix) {
			n++
		}
	}
	return n
}

func (h *harness) open(to route) {
	h.t.Helper()
	h.run(h.app.mount(to))
}

// send delivers msg and runs every command it produces.
func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	model, cmd := h.app.Update(msg)
	h.app = model.(*App)
	h.run(cmd)
}

func (h *harness) press(keys ...string) {
	h.t.Helper()
	for _, k := range keys {
		h.send(keyMsg(k))
	}
}

func (h *harness) typeText(text string) {
	h.t.Helper()
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// run executes cmd synchronously, flattening batches, until no command is
// left.
func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 500 {
			h.t.Fatalf("command loop did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		switch msg := msg.(type) {
		case nil:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		case tea.QuitMsg:
			return
		}
		model, c := h.app.Update(msg)
		h.app = model.(*App)
		queue = append(queue, c)
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}
