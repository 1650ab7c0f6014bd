package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
	"github.com/idilsaglam/tada/internal/view"
)

func newListCmd(app *App) *cobra.Command {
	var group bool
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List items",
		Args:  exactArgs(0, "tada ls [--group] [--filter all|active|completed]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, release, err := app.controller(cmd.Context())
			if err != nil {
				return err
			}
			defer release()
			ctl.SetFilter(model.Filter(app.Filter))
			renderList(cmd.OutOrStdout(), ctl, group)
			return nil
		},
	}
	cmd.Flags().BoolVar(&group, "group", false, "Group items by pending/done")
	return cmd
}

func renderList(w io.Writer, ctl *view.Controller, group bool) {
	t := ui.Current()
	todos := ctl.Todos()
	left := ctl.RemainingCount()
	done := len(todos) - left

	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.Paint(w, t.Title, "Todos"),
		ui.Paint(w, t.Success, t.SymDone), done,
		ui.Paint(w, t.Pending, "•"), left,
		ui.Paint(w, t.Accent, "Total"), len(todos),
	)
	lines := []string{header, ui.Paint(w, t.Muted, ui.ProgressBar(done, len(todos), 28)), ""}

	shown := ctl.FilteredTodos()
	if group {
		lines = append(lines, groupLines(w, shown)...)
	} else {
		lines = append(lines, flatLines(w, shown)...)
	}
	noun := "items"
	if left == 1 {
		noun = "item"
	}
	lines = append(lines, "", ui.Paint(w, t.Muted, fmt.Sprintf("%d %s left · showing %s", left, noun, ctl.Filter().Label())))
	ui.Panel(w, lines)
}

// flatLines numbers items 1.. in the order given.
func flatLines(w io.Writer, todos []model.Todo) []string {
	t := ui.Current()
	if len(todos) == 0 {
		return []string{ui.Paint(w, t.Muted, "no items")}
	}
	out := make([]string, 0, len(todos))
	for i, td := range todos {
		idx := fmt.Sprintf("%2s.", strconv.Itoa(i+1))
		box := ui.Paint(w, t.Muted, t.Box(false))
		if td.Done {
			box = ui.Paint(w, t.Success, t.Box(true))
		}
		out = append(out, fmt.Sprintf("%s %s %s", ui.Paint(w, t.Muted, idx), box, ui.Truncate(td.Description, 80)))
	}
	return out
}

func groupLines(w io.Writer, todos []model.Todo) []string {
	t := ui.Current()
	section := func(title string, f model.Filter) []string {
		lines := []string{ui.Paint(w, t.Accent, title)}
		items := view.FilterTodos(todos, f)
		if len(items) == 0 {
			return append(lines, ui.Paint(w, t.Muted, "(none)"))
		}
		return append(lines, flatLines(w, items)...)
	}
	lines := section("Pending", model.FilterActive)
	lines = append(lines, "")
	return append(lines, section("Done", model.FilterCompleted)...)
}
