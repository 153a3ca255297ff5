package prompt

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PickerPrompter presents selections as a full-screen BubbleTea list.
// Confirm and Input stay line-based even on a terminal.
type PickerPrompter struct {
	stdin *StdinPrompter
}

// NewPicker creates a terminal picker prompter.
func NewPicker() *PickerPrompter {
	return &PickerPrompter{
		stdin: NewStdin(os.Stdin, os.Stdout),
	}
}

// Select runs the picker in single-select mode. Nothing to pick from
// counts as a cancellation, not a choice.
func (p *PickerPrompter) Select(title string, options []Option) (string, error) {
	if len(options) == 0 {
		return "", ErrCancelled
	}

	final, err := tea.NewProgram(newPickerModel(title, options, false)).Run()
	if err != nil {
		return "", fmt.Errorf("failed to run picker: %w", err)
	}

	m, ok := final.(pickerModel)
	if !ok || m.cancelled {
		return "", ErrCancelled
	}
	return options[m.cursor].Value, nil
}

// MultiSelect runs the picker in multi-select mode.
func (p *PickerPrompter) MultiSelect(title string, options []Option) ([]string, error) {
	if len(options) == 0 {
		return nil, ErrCancelled
	}

	final, err := tea.NewProgram(newPickerModel(title, options, true)).Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run picker: %w", err)
	}

	m, ok := final.(pickerModel)
	if !ok || m.cancelled {
		return nil, ErrCancelled
	}

	var values []string
	for i, opt := range options {
		if m.chosen[i] {
			values = append(values, opt.Value)
		}
	}
	return values, nil
}

// Confirm delegates to the line-based prompter.
func (p *PickerPrompter) Confirm(message string, def bool) (bool, error) {
	return p.stdin.Confirm(message, def)
}

// Input delegates to the line-based prompter.
func (p *PickerPrompter) Input(message, def string) (string, error) {
	return p.stdin.Input(message, def)
}

// pickerKeyMap defines the key bindings for the picker.
type pickerKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

func defaultPickerKeyMap() pickerKeyMap {
	return pickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/esc", "cancel"),
		),
	}
}

// Styles for the picker.
var pickerStyles = struct {
	Title    lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Help     lipgloss.Style
}{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(0, 1),
	Item:     lipgloss.NewStyle().Padding(0, 2),
	Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 2),
	Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(1, 1),
}

// pickerModel is the BubbleTea model behind Select and MultiSelect.
type pickerModel struct {
	title     string
	options   []Option
	cursor    int
	multi     bool
	chosen    map[int]bool
	keys      pickerKeyMap
	cancelled bool
	quitting  bool
}

func newPickerModel(title string, options []Option, multi bool) pickerModel {
	return pickerModel{
		title:   title,
		options: options,
		multi:   multi,
		chosen:  make(map[int]bool),
		keys:    defaultPickerKeyMap(),
	}
}

// Init implements tea.Model.
func (m pickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.cancelled = true
		m.quitting = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}

	case key.Matches(keyMsg, m.keys.Toggle):
		if m.multi {
			m.chosen[m.cursor] = !m.chosen[m.cursor]
		}

	case key.Matches(keyMsg, m.keys.Confirm):
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model.
func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(pickerStyles.Title.Render(m.title))
	b.WriteString("\n\n")

	for i, opt := range m.options {
		label := opt.Label
		if m.multi {
			mark := "[ ]"
			if m.chosen[i] {
				mark = "[x]"
			}
			label = mark + " " + label
		}
		if i == m.cursor {
			b.WriteString(pickerStyles.Selected.Render("> " + label))
		} else {
			b.WriteString(pickerStyles.Item.Render("  " + label))
		}
		b.WriteString("\n")
	}

	help := "↑/↓ move · enter confirm · q cancel"
	if m.multi {
		help = "↑/↓ move · space toggle · enter confirm · q cancel"
	}
	b.WriteString(pickerStyles.Help.Render(help))
	return b.String()
}
