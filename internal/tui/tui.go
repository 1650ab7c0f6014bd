// Package tui is the interactive list: a Bubble Tea front-end over a
// view.Controller. Handlers run as commands; their results and every state
// change reach Update as messages.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/route"
	"github.com/idilsaglam/tada/internal/ui"
	"github.com/idilsaglam/tada/internal/view"
)

// changedMsg reports that controller state changed.
type changedMsg struct{}

// doneMsg carries the result of a handler.
type doneMsg struct {
	op  string
	err error
}

type Model struct {
	ctx  context.Context
	ctl  *view.Controller
	nav  *route.History
	copy func(string) error

	list   list.Model
	ti     textinput.Model
	adding bool
	status string

	width, height int
}

type Option func(*Model)

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) {
		m.copy = fn
	}
}

var (
	addBind    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	toggleBind = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	allBind    = key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle all"))
	editBind   = key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit"))
	removeBind = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove"))
	clearBind  = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear done"))
	filterBind = key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1-3", "filter"))
	copyBind   = key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy"))
)

// New builds the model. The caller owns the route bridge between nav and ctl.
func New(ctx context.Context, ctl *view.Controller, nav *route.History, opts ...Option) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowTitle(true)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = ui.Current().Title
	l.Styles.HelpStyle = ui.Current().Help
	l.Styles.PaginationStyle = ui.Current().Help
	l.SetStatusBarItemName("item", "items")
	extra := func() []key.Binding {
		return []key.Binding{addBind, toggleBind, allBind, editBind, removeBind, clearBind, filterBind, copyBind}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "What needs to be done?"
	ti.CharLimit = 200

	m := Model{
		ctx:    ctx,
		ctl:    ctl,
		nav:    nav,
		copy:   clipboard.WriteAll,
		list:   l,
		ti:     ti,
		width:  80,
		height: 24,
	}
	for _, o := range opts {
		o(&m)
	}
	m.sync()
	return m
}

// Run mounts the controller, drives the program until quit and unmounts.
func Run(ctx context.Context, ctl *view.Controller, nav *route.History, opts ...Option) error {
	bridge := route.NewBridge(nav, ctl)
	bridge.Start()
	defer bridge.Stop()

	m := New(ctx, ctl, nav, opts...)
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		m.width, m.height = w, h
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	cancel := ctl.Subscribe(func() { go p.Send(changedMsg{}) })
	defer cancel()

	_, err := p.Run()
	return err
}

// run performs a handler off the Update loop.
func (m Model) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return doneMsg{op: op, err: fn(ctx)}
	}
}

func (m Model) Init() tea.Cmd {
	return m.run("load", m.ctl.Mount)
}

func (m Model) selected() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it.todo, ok
}

// sync rebuilds the rows from the controller.
func (m *Model) sync() tea.Cmd {
	editing, _ := m.ctl.Editing()
	todos := m.ctl.FilteredTodos()
	items := make([]list.Item, 0, len(todos))
	for _, t := range todos {
		items = append(items, listItem{todo: t, editing: t.ID == editing})
	}
	cmd := m.list.SetItems(items)
	if n := len(items); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
	m.list.Title = m.title()
	m.resize()
	return cmd
}

// resize fits the list between the header and the input bar.
func (m *Model) resize() {
	_, editing := m.editingID()
	listHeight := m.height - 6
	if m.adding || editing {
		listHeight -= 4
	}
	if listHeight < 3 {
		listHeight = 3
	}
	m.list.SetSize(m.width-4, listHeight)
}

func (m Model) title() string {
	t := ui.Current()
	todos := m.ctl.Todos()
	left := view.RemainingCount(todos)
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), len(todos)-left,
		t.Pending.Render("•"), left,
		t.Accent.Render("Total"), len(todos),
	)
}

func (m Model) editingID() (string, bool) {
	return m.ctl.Editing()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case changedMsg:
		cmd := m.sync()
		return m, cmd
	case doneMsg:
		if msg.err != nil {
			m.status = msg.op + ": " + msg.err.Error()
		} else {
			m.status = ""
			if msg.op == "add" {
				m.ti.SetValue(m.ctl.Draft())
			}
		}
		if _, ok := m.editingID(); !ok && !m.adding {
			m.ti.Blur()
		}
		cmd := m.sync()
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.adding {
			return m.updateAdd(msg)
		}
		if id, ok := m.editingID(); ok {
			return m.updateEdit(msg, id)
		}
		return m.updateBrowse(msg)
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The input is disabled while an add is in flight; only esc gets through.
	if m.ctl.Submitting() && msg.String() != "esc" {
		return m, nil
	}
	switch msg.String() {
	case "enter":
		m.ctl.SetDraft(m.ti.Value())
		return m, m.run("add", func(ctx context.Context) error {
			return m.ctl.SubmitNew(ctx, view.KeyEnter)
		})
	case "esc":
		m.adding = false
		m.ti.Blur()
		m.resize()
		return m, nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	m.ctl.SetDraft(m.ti.Value())
	return m, cmd
}

func (m Model) updateEdit(msg tea.KeyMsg, id string) (tea.Model, tea.Cmd) {
	text := m.ti.Value()
	switch msg.String() {
	case "enter":
		return m, m.run("edit", func(ctx context.Context) error {
			return m.ctl.EditKey(ctx, id, view.KeyEnter, text)
		})
	case "esc":
		m.ctl.CancelEdit()
		m.ti.SetValue("")
		m.ti.Blur()
		cmd := m.sync()
		return m, cmd
	case "tab", "up", "down":
		// leaving the editor commits it, like a blur
		return m, m.run("edit", func(ctx context.Context) error {
			return m.ctl.CommitEdit(ctx, id, text)
		})
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "a":
		if m.ctl.Submitting() {
			return m, nil
		}
		m.adding = true
		m.ti.SetValue(m.ctl.Draft())
		m.ti.Placeholder = "What needs to be done?"
		m.ti.CursorEnd()
		m.ti.Focus()
		m.resize()
		return m, textinput.Blink
	case " ":
		if t, ok := m.selected(); ok {
			return m, m.run("toggle", func(ctx context.Context) error {
				return m.ctl.ToggleOne(ctx, t.ID, !t.Done)
			})
		}
		return m, nil
	case "t":
		done := !m.ctl.AllDone()
		return m, m.run("toggle all", func(ctx context.Context) error {
			return m.ctl.ToggleAll(ctx, done)
		})
	case "e", "enter":
		if t, ok := m.selected(); ok {
			m.ctl.BeginEdit(t.ID)
			m.ti.SetValue(t.Description)
			m.ti.Placeholder = "Edit item..."
			m.ti.CursorEnd()
			m.ti.Focus()
			cmd := m.sync()
			return m, cmd
		}
		return m, nil
	case "d":
		if t, ok := m.selected(); ok {
			return m, m.run("remove", func(ctx context.Context) error {
				return m.ctl.RemoveOne(ctx, t.ID)
			})
		}
		return m, nil
	case "c":
		if !m.ctl.ShowClearCompleted() {
			return m, nil
		}
		return m, m.run("clear", m.ctl.ClearCompleted)
	case "1", "2", "3":
		f := model.Filters[int(msg.String()[0]-'1')]
		m.nav.Navigate(route.FragmentFor(f))
		cmd := m.sync()
		return m, cmd
	case "y":
		if t, ok := m.selected(); ok {
			if err := m.copy(t.Description); err != nil {
				m.status = "copy: " + err.Error()
			} else {
				m.status = "copied"
			}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) footer() string {
	t := ui.Current()
	left := m.ctl.RemainingCount()
	noun := "items"
	if left == 1 {
		noun = "item"
	}
	parts := []string{fmt.Sprintf("%d %s left", left, noun)}
	active := m.ctl.Filter()
	var links []string
	for i, f := range model.Filters {
		label := fmt.Sprintf("%d %s", i+1, f.Label())
		if f == active {
			label = t.Selected.Render(label)
		} else {
			label = t.Muted.Render(label)
		}
		links = append(links, label)
	}
	parts = append(parts, strings.Join(links, " "))
	if m.ctl.ShowClearCompleted() {
		parts = append(parts, t.Muted.Render("c clear completed"))
	}
	return strings.Join(parts, "   ")
}

func (m Model) View() string {
	t := ui.Current()
	_, editing := m.editingID()
	m.resize()

	content := m.list.View() + "\n" + m.footer()
	if m.status != "" {
		content += "\n" + t.Error.Render(m.status)
	}
	if m.adding || editing {
		bar := lipgloss.NewStyle().Border(t.Border).BorderForeground(t.BorderColor).Padding(0, 1)
		title := "Add new item"
		if editing {
			title = "Edit item"
		}
		if m.adding && m.ctl.Submitting() {
			title += " " + t.Muted.Render("(saving…)")
		}
		content += "\n" + bar.Render(title+"\n"+m.ti.View())
	}
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Render(content)
}
