package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
)

// listItem adapts a todo to bubbles/list.Item
type listItem struct {
	todo    model.Todo
	editing bool
}

func (i listItem) Title() string       { return i.todo.Description }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.todo.Description }

// itemDelegate renders one todo per line: cursor, checkbox, description.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)
	t := ui.Current()

	box := t.Muted.Render(t.Box(false))
	text := ui.Truncate(it.todo.Description, m.Width()-6)
	if it.todo.Done {
		box = t.Success.Render(t.Box(true))
		text = t.Done.Render(text)
	}
	if it.editing {
		text = t.Accent.Render(text + " ✎")
	}
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	fmt.Fprint(w, prefix+box+" "+text)
}
