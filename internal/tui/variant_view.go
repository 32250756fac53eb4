package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/backoffice/internal/api"
	"github.com/kingrea/backoffice/internal/catalog"
	"github.com/kingrea/backoffice/internal/form"
	"github.com/kingrea/backoffice/internal/query"
)

type variantPageMsg struct {
	addr
	page int
	data catalog.VariantPage
	err  error
}

type variantRefsMsg struct {
	addr
	colors []catalog.Color
	sizes  []catalog.Size
	err    error
}

type variantSavedMsg struct {
	addr
	created bool
	err     error
}

type variantDeletedMsg struct {
	addr
	label string
	err   error
}

// variantView manages one product's variants: a paginated table plus a modal
// for create and edit.
type variantView struct {
	id        int
	svc       *services
	productID int64
	page      int

	state loadState
	data  catalog.VariantPage
	err   error
	table table.Model
	pager paginator.Model

	colors  []catalog.Color
	sizes   []catalog.Size
	refs    loadState
	refsErr error

	confirm  *catalog.Variant
	deleting bool
	modal    *variantModal
}

func newVariantView(id int, svc *services, productID int64) *variantView {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Color", Width: 14},
			{Title: "Size", Width: 8},
			{Title: "Price", Width: 14},
			{Title: "Sale price", Width: 14},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles())
	pager := paginator.New()
	pager.Type = paginator.Arabic
	pager.ArabicFormat = "page %d of %d"
	return &variantView{id: id, svc: svc, productID: productID, page: 1, table: t, pager: pager}
}

func (v *variantView) ID() int { return v.id }

func (v *variantView) Title() string {
	return fmt.Sprintf("Variants of product %d", v.productID)
}

func (v *variantView) Help() string {
	switch {
	case v.modal != nil:
		return v.modal.help()
	case v.confirm != nil:
		return "y confirm delete · n/esc cancel"
	default:
		return "n new · e/enter edit · d delete · [ ] page · r refresh · esc back"
	}
}

func (v *variantView) Init() tea.Cmd {
	v.state = stateLoading
	v.refs = stateLoading
	return tea.Batch(v.fetchPage(), v.fetchRefs())
}

func (v *variantView) fetchPage() tea.Cmd {
	id, svc, productID, page := v.id, v.svc, v.productID, v.page
	return func() tea.Msg {
		data, err := query.Fetch(svc.ctx, svc.cache, variantPageKey(productID, page), func(ctx context.Context) (catalog.VariantPage, error) {
			return svc.api.Variants().List(ctx, productID, page)
		})
		return variantPageMsg{addr: addr{id}, page: page, data: data, err: err}
	}
}

// fetchRefs loads colors and sizes through the same cache keys the color and
// size screens use.
func (v *variantView) fetchRefs() tea.Cmd {
	id, svc := v.id, v.svc
	return func() tea.Msg {
		colors, err := colorResource(svc.api).list(svc)
		if err != nil {
			return variantRefsMsg{addr: addr{id}, err: err}
		}
		sizes, err := sizeResource(svc.api).list(svc)
		return variantRefsMsg{addr: addr{id}, colors: colors, sizes: sizes, err: err}
	}
}

func (v *variantView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case variantPageMsg:
		if msg.page != v.page {
			return nil
		}
		if msg.err != nil {
			v.state = stateFailed
			v.err = msg.err
			return nil
		}
		v.state = stateReady
		v.err = nil
		v.data = msg.data
		v.syncRows()
		return nil

	case variantRefsMsg:
		if msg.err != nil {
			v.refs = stateFailed
			v.refsErr = msg.err
			return notifyError("Could not load colors and sizes: " + api.Message(msg.err))
		}
		v.refs = stateReady
		v.colors = msg.colors
		v.sizes = msg.sizes
		return nil

	case variantSavedMsg:
		if v.modal == nil {
			return nil
		}
		v.modal.pending = false
		if msg.err != nil {
			return notifyError(api.Message(msg.err))
		}
		v.modal = nil
		v.state = stateLoading
		text := "Variant updated"
		if msg.created {
			text = "Variant created"
		}
		return tea.Batch(notifySuccess(text), v.fetchPage())

	case variantDeletedMsg:
		v.deleting = false
		if msg.err != nil {
			return notifyError(fmt.Sprintf("Could not delete %s: %s", msg.label, api.Message(msg.err)))
		}
		v.state = stateLoading
		return tea.Batch(notifySuccess("Variant deleted"), v.fetchPage())

	case tea.WindowSizeMsg:
		v.table.SetHeight(max(3, msg.Height-14))
		return nil

	case tea.KeyMsg:
		if v.modal != nil {
			return v.updateModal(msg)
		}
		return v.handleKey(msg)
	}
	return nil
}

func (v *variantView) handleKey(msg tea.KeyMsg) tea.Cmd {
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
	case "]":
		if v.state == stateReady && v.data.HasNext() {
			return v.goToPage(v.page + 1)
		}
		return nil
	case "[":
		if v.page > 1 {
			return v.goToPage(v.page - 1)
		}
		return nil
	case "r":
		v.svc.cache.Invalidate(variantPagesKey(v.productID))
		cmds := []tea.Cmd{v.goToPage(v.page)}
		if v.refs == stateFailed {
			v.refs = stateLoading
			cmds = append(cmds, v.fetchRefs())
		}
		return tea.Batch(cmds...)
	case "n":
		if v.refs != stateReady {
			return notifyError("Colors and sizes are not loaded yet")
		}
		v.modal = newVariantModal(v.colors, v.sizes, nil)
		return nil
	case "e", "enter":
		item, ok := v.selected()
		if !ok {
			return nil
		}
		if v.refs != stateReady {
			return notifyError("Colors and sizes are not loaded yet")
		}
		v.modal = newVariantModal(v.colors, v.sizes, &item)
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

func (v *variantView) goToPage(page int) tea.Cmd {
	v.page = max(1, page)
	v.state = stateLoading
	return v.fetchPage()
}

func (v *variantView) updateModal(msg tea.KeyMsg) tea.Cmd {
	m := v.modal
	switch msg.String() {
	case "esc":
		if !m.pending {
			v.modal = nil
		}
		return nil
	case "enter":
		return v.submit()
	}
	return m.update(msg)
}

func (v *variantView) submit() tea.Cmd {
	m := v.modal
	if m == nil || m.pending {
		return nil
	}
	draft, errs := form.ParseVariant(m.input())
	if errs != nil {
		m.errs = errs
		return nil
	}
	m.errs = nil
	m.pending = true
	id, svc, productID := v.id, v.svc, v.productID
	if m.editing == nil {
		return func() tea.Msg {
			_, err := query.Mutate(svc.ctx, svc.cache, func(ctx context.Context) (catalog.Variant, error) {
				return svc.api.Variants().Create(ctx, productID, draft)
			}, variantPagesKey(productID))
			return variantSavedMsg{addr: addr{id}, created: true, err: err}
		}
	}
	variantID := m.editing.ID
	return func() tea.Msg {
		_, err := query.Mutate(svc.ctx, svc.cache, func(ctx context.Context) (catalog.Variant, error) {
			return svc.api.Variants().Update(ctx, variantID, draft)
		}, variantPagesKey(productID), variantKey(variantID))
		return variantSavedMsg{addr: addr{id}, err: err}
	}
}

func (v *variantView) remove(item catalog.Variant) tea.Cmd {
	id, svc, productID := v.id, v.svc, v.productID
	return func() tea.Msg {
		_, err := query.Mutate(svc.ctx, svc.cache, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, svc.api.Variants().Delete(ctx, item.ID)
		}, variantPagesKey(productID), variantKey(item.ID))
		return variantDeletedMsg{addr: addr{id}, label: item.Label(), err: err}
	}
}

func (v *variantView) selected() (catalog.Variant, bool) {
	if v.state != stateReady || len(v.data.Items) == 0 {
		return catalog.Variant{}, false
	}
	idx := v.table.Cursor()
	if idx < 0 || idx >= len(v.data.Items) {
		return catalog.Variant{}, false
	}
	return v.data.Items[idx], true
}

func (v *variantView) syncRows() {
	rows := make([]table.Row, 0, len(v.data.Items))
	for _, item := range v.data.Items {
		rows = append(rows, table.Row{
			strconv.FormatInt(item.ID, 10),
			item.ColorName(),
			item.SizeName(),
			catalog.FormatVND(item.Price),
			catalog.FormatOptionalVND(item.SalePrice),
		})
	}
	v.table.SetRows(rows)
	if v.table.Cursor() >= len(rows) {
		v.table.SetCursor(max(0, len(rows)-1))
	}
	v.pager.TotalPages = max(1, v.data.LastPage)
	v.pager.Page = max(0, v.data.CurrentPage-1)
}

func (v *variantView) View(width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(v.Title()))
	b.WriteString("\n")
	switch v.state {
	case stateLoading:
		b.WriteString(hintStyle.Render(fmt.Sprintf("Loading page %d...", v.page)))
	case stateFailed:
		b.WriteString(errorStyle.Render("Failed to load: " + api.Message(v.err)))
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("Press r to retry."))
	case stateReady:
		if len(v.data.Items) == 0 {
			b.WriteString(hintStyle.Render("No variants on this page. Press n to create one."))
		} else {
			b.WriteString(v.table.View())
		}
		b.WriteString("\n")
		b.WriteString(hintStyle.Render(v.pager.View()))
	}
	if v.confirm != nil {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Delete variant %q? (y/n)", v.confirm.Label())))
	}
	if v.modal != nil {
		return lipgloss.JoinVertical(lipgloss.Left, b.String(), "", v.modal.view())
	}
	return b.String()
}

const (
	fieldColor = iota
	fieldSize
	fieldPrice
	fieldSale
	fieldCount
)

// variantModal holds the local draft while creating or editing a variant.
// Selector indexes are -1 until a choice is made.
type variantModal struct {
	editing  *catalog.Variant
	colors   []catalog.Color
	sizes    []catalog.Size
	colorIdx int
	sizeIdx  int
	price    textinput.Model
	sale     textinput.Model
	focus    int
	errs     form.Errors
	pending  bool
}

func newVariantModal(colors []catalog.Color, sizes []catalog.Size, editing *catalog.Variant) *variantModal {
	m := &variantModal{
		colors:   colors,
		sizes:    sizes,
		colorIdx: -1,
		sizeIdx:  -1,
		price:    newTextInput("e.g. 100000", 20),
		sale:     newTextInput("optional", 20),
	}
	if editing == nil {
		m.setFocus(fieldColor)
		return m
	}
	m.editing = editing
	for i, c := range colors {
		if c.ID == editing.ColorID {
			m.colorIdx = i
		}
	}
	for i, s := range sizes {
		if s.ID == editing.SizeID {
			m.sizeIdx = i
		}
	}
	m.price.SetValue(editing.Price.String())
	if editing.SalePrice != nil {
		m.sale.SetValue(editing.SalePrice.String())
	}
	m.setFocus(fieldPrice)
	return m
}

func (m *variantModal) help() string {
	if m.pending {
		return "saving..."
	}
	if m.editing != nil {
		return "tab next field · enter save · esc cancel"
	}
	return "tab next field · ←/→ choose · enter save · esc cancel"
}

// selectorsEnabled is false when editing: a variant's color and size are fixed.
func (m *variantModal) selectorsEnabled() bool {
	return m.editing == nil
}

func (m *variantModal) setFocus(field int) {
	m.focus = field
	m.price.Blur()
	m.sale.Blur()
	switch field {
	case fieldPrice:
		m.price.Focus()
	case fieldSale:
		m.sale.Focus()
	}
}

func (m *variantModal) moveFocus(delta int) {
	next := m.focus
	for i := 0; i < fieldCount; i++ {
		next = (next + delta + fieldCount) % fieldCount
		if m.selectorsEnabled() || (next != fieldColor && next != fieldSize) {
			break
		}
	}
	m.setFocus(next)
}

func (m *variantModal) update(msg tea.KeyMsg) tea.Cmd {
	if m.pending {
		return nil
	}
	switch msg.String() {
	case "tab", "down":
		m.moveFocus(1)
		return nil
	case "shift+tab", "up":
		m.moveFocus(-1)
		return nil
	case "left", "right":
		if m.focus == fieldColor || m.focus == fieldSize {
			if !m.selectorsEnabled() {
				return nil
			}
			delta := 1
			if msg.String() == "left" {
				delta = -1
			}
			if m.focus == fieldColor {
				m.colorIdx = cycle(m.colorIdx, delta, len(m.colors))
			} else {
				m.sizeIdx = cycle(m.sizeIdx, delta, len(m.sizes))
			}
			return nil
		}
	}
	var cmd tea.Cmd
	switch m.focus {
	case fieldPrice:
		m.price, cmd = m.price.Update(msg)
	case fieldSale:
		m.sale, cmd = m.sale.Update(msg)
	}
	return cmd
}

// input collects the free-text draft handed to form.ParseVariant. When editing,
// the original color and size are always resent.
func (m *variantModal) input() form.VariantInput {
	in := form.VariantInput{Price: m.price.Value(), SalePrice: m.sale.Value()}
	if m.editing != nil {
		in.ColorID = strconv.FormatInt(m.editing.ColorID, 10)
		in.SizeID = strconv.FormatInt(m.editing.SizeID, 10)
		return in
	}
	if m.colorIdx >= 0 && m.colorIdx < len(m.colors) {
		in.ColorID = strconv.FormatInt(m.colors[m.colorIdx].ID, 10)
	}
	if m.sizeIdx >= 0 && m.sizeIdx < len(m.sizes) {
		in.SizeID = strconv.FormatInt(m.sizes[m.sizeIdx].ID, 10)
	}
	return in
}

func (m *variantModal) view() string {
	title := "New variant"
	if m.editing != nil {
		title = "Edit variant #" + strconv.FormatInt(m.editing.ID, 10)
	}
	colorName := "select a color"
	if m.colorIdx >= 0 && m.colorIdx < len(m.colors) {
		colorName = m.colors[m.colorIdx].Name
	} else if m.editing != nil {
		colorName = m.editing.ColorName()
	}
	sizeName := "select a size"
	if m.sizeIdx >= 0 && m.sizeIdx < len(m.sizes) {
		sizeName = m.sizes[m.sizeIdx].Name
	} else if m.editing != nil {
		sizeName = m.editing.SizeName()
	}

	lines := []string{titleStyle.Render(title)}
	lines = append(lines, m.row(fieldColor, "Color", m.selector(colorName), "color_id"))
	lines = append(lines, m.row(fieldSize, "Size", m.selector(sizeName), "size_id"))
	lines = append(lines, m.row(fieldPrice, "Price", m.price.View(), "price"))
	lines = append(lines, m.row(fieldSale, "Sale price", m.sale.View(), "sale_price"))
	if m.pending {
		lines = append(lines, "", hintStyle.Render("Saving..."))
	}
	return modalStyle.Render(strings.Join(lines, "\n"))
}

func (m *variantModal) selector(name string) string {
	if !m.selectorsEnabled() {
		return disabledStyle.Render(name + " (fixed)")
	}
	return "‹ " + name + " ›"
}

func (m *variantModal) row(field int, label, value, errKey string) string {
	style := labelStyle
	if m.focus == field {
		style = focusedLabelStyle
	}
	line := style.Render(label) + value
	if msg, ok := m.errs[errKey]; ok {
		line += "\n" + renderFieldError(msg)
	}
	return line
}

func cycle(idx, delta, n int) int {
	if n == 0 {
		return -1
	}
	if idx < 0 {
		if delta < 0 {
			return n - 1
		}
		return 0
	}
	return (idx + delta + n) % n
}
