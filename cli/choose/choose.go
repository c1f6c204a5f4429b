// Package choose implements the interactive recipe picker: a fuzzy
// filter over the public recipes, driven by a Bubble Tea text input.
package choose

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/chef/lang"
	"github.com/ardnew/chef/run"
)

// ErrCancelled is reported when the user dismisses the picker without
// selecting a recipe.
var ErrCancelled = lang.NewError("selection cancelled")

const (
	prompt      = "➜ "
	maxVisible  = 10
	defaultCols = 80
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	paramStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	docStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// source adapts signatures to fuzzy matching over recipe names.
type source []run.Signature

func (s source) Len() int            { return len(s) }
func (s source) String(i int) string { return s[i].Name }

// Pick presents the recipe picker and returns the selected recipe name.
func Pick(ctx context.Context, sigs []run.Signature) (string, error) {
	if len(sigs) == 0 {
		return "", run.ErrResolve.Wrap(run.ErrNoRecipes)
	}

	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Placeholder = "filter recipes"
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = defaultCols

	m := model{
		input: ti,
		sigs:  sigs,
		width: defaultCols,
	}
	m.refresh()

	p := tea.NewProgram(m, tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil {
		return "", err
	}

	picked, ok := final.(model)
	if !ok || picked.choice == "" {
		return "", ErrCancelled
	}

	return picked.choice, nil
}

// model is the Bubble Tea model for the picker.
type model struct {
	input    textinput.Model
	sigs     []run.Signature
	matches  fuzzy.Matches
	idx      int
	width    int
	choice   string
	quitting bool
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(prompt) - 2

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true

		return m, tea.Quit

	case tea.KeyEnter:
		if len(m.matches) > 0 {
			m.choice = m.sigs[m.matches[m.idx].Index].Name
		}

		m.quitting = true

		return m, tea.Quit

	case tea.KeyUp, tea.KeyShiftTab:
		if m.idx > 0 {
			m.idx--
		}

		return m, nil

	case tea.KeyDown, tea.KeyTab:
		if m.idx < len(m.matches)-1 {
			m.idx++
		}

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	m.refresh()

	return m, cmd
}

// refresh recomputes the match set for the current filter text. An empty
// filter matches every recipe in declaration order.
func (m *model) refresh() {
	pattern := strings.TrimSpace(m.input.Value())

	if pattern == "" {
		m.matches = m.matches[:0]
		for i := range m.sigs {
			m.matches = append(m.matches, fuzzy.Match{
				Str:   m.sigs[i].Name,
				Index: i,
			})
		}
	} else {
		m.matches = fuzzy.FindFrom(pattern, source(m.sigs))
	}

	if m.idx >= len(m.matches) {
		m.idx = 0
	}
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	if len(m.matches) == 0 {
		b.WriteString(hintStyle.Render("no matching recipes"))
		b.WriteString("\n")

		return b.String()
	}

	first := 0
	if m.idx >= maxVisible {
		first = m.idx - maxVisible + 1
	}

	for row := first; row < len(m.matches) && row < first+maxVisible; row++ {
		b.WriteString(m.renderRow(row))
		b.WriteString("\n")
	}

	return b.String()
}

// renderRow renders one candidate line, highlighting the runes the
// filter matched and marking the selected row.
func (m model) renderRow(row int) string {
	match := m.matches[row]
	sig := m.sigs[match.Index]

	var line strings.Builder

	if row == m.idx {
		line.WriteString(selectedStyle.Render("  " + sig.Name))
	} else {
		line.WriteString("  ")
		line.WriteString(highlightMatches(sig.Name, match.MatchedIndexes))
	}

	for _, p := range sig.Params {
		line.WriteByte(' ')
		line.WriteString(paramStyle.Render(p))
	}

	if sig.Doc != "" {
		line.WriteString(docStyle.Render(" # " + sig.Doc))
	}

	return line.String()
}

// highlightMatches emphasizes the matched positions within a candidate
// name.
func highlightMatches(name string, indexes []int) string {
	if len(indexes) == 0 {
		return name
	}

	matched := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		matched[i] = true
	}

	var sb strings.Builder

	for i, r := range name {
		if matched[i] {
			sb.WriteString(matchStyle.Render(string(r)))
		} else {
			sb.WriteRune(r)
		}
	}

	return sb.String()
}
