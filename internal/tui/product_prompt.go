package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// productPrompt asks which product's variants to manage.
type productPrompt struct {
	id    int
	svc   *services
	input textinput.Model
	err   string
}

func newProductPrompt(id int, svc *services) *productPrompt {
	input := newTextInput("product id", 20)
	if svc.config != nil {
		if last := svc.config.LastProductID(); last > 0 {
			input.SetValue(strconv.FormatInt(last, 10))
			input.CursorEnd()
		}
	}
	return &productPrompt{id: id, svc: svc, input: input}
}

func (p *productPrompt) ID() int       { return p.id }
func (p *productPrompt) Title() string { return "Product variants" }
func (p *productPrompt) Help() string  { return "enter open · esc back" }

func (p *productPrompt) Init() tea.Cmd {
	return p.input.Focus()
}

func (p *productPrompt) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return navigate(route{view: viewMenu})
		case "enter":
			return p.submit()
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *productPrompt) submit() tea.Cmd {
	raw := strings.TrimSpace(p.input.Value())
	productID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || productID <= 0 {
		p.err = "Product id must be a positive whole number"
		return nil
	}
	p.err = ""
	if p.svc.config != nil {
		if err := p.svc.config.SetLastProduct(productID); err != nil && p.svc.logbook != nil {
			p.svc.logbook.Warn("Could not remember product %d: %v", productID, err)
		}
	}
	return navigate(route{view: viewVariants, productID: productID})
}

func (p *productPrompt) View(width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Product variants"))
	b.WriteString("\n")
	b.WriteString(focusedLabelStyle.Render("Product"))
	b.WriteString(boxStyle.Render(p.input.View()))
	if p.err != "" {
		b.WriteString("\n")
		b.WriteString(renderFieldError(p.err))
	}
	return b.String()
}
