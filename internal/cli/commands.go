package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
	"github.com/idilsaglam/tada/internal/view"
)

// withController runs fn against a mounted controller showing app.Filter.
func (app *App) withController(ctx context.Context, fn func(ctl *view.Controller) error) error {
	ctl, release, err := app.controller(ctx)
	if err != nil {
		return err
	}
	defer release()
	ctl.SetFilter(model.Filter(app.Filter))
	return fn(ctl)
}

// pick resolves a 1-based index over the filtered list.
func pick(ctl *view.Controller, arg string) (model.Todo, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return model.Todo{}, usagef("not a number: %s", arg)
	}
	todos := ctl.FilteredTodos()
	if n < 1 || n > len(todos) {
		return model.Todo{}, usagef("index out of range: have %d, got %d (run `tada ls` to see valid indexes)", len(todos), n)
	}
	return todos[n-1], nil
}

func newAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <description...>",
		Short: "Add a new item (description can be multiple words)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usagef("usage: tada add <description...>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			description := strings.TrimSpace(strings.Join(args, " "))
			if description == "" {
				return usagef("add: empty description")
			}
			return app.withController(cmd.Context(), func(ctl *view.Controller) error {
				ctl.SetDraft(description)
				if err := ctl.SubmitNew(cmd.Context(), view.KeyEnter); err != nil {
					return err
				}
				ui.OK(cmd.OutOrStdout(), "added")
				return nil
			})
		},
	}
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <index>",
		Short: "Toggle done for the item at a 1-based index",
		Args:  exactArgs(1, "tada done <index>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withController(cmd.Context(), func(ctl *view.Controller) error {
				t, err := pick(ctl, args[0])
				if err != nil {
					return err
				}
				if err := ctl.ToggleOne(cmd.Context(), t.ID, !t.Done); err != nil {
					return err
				}
				ui.OK(cmd.OutOrStdout(), "toggled")
				return nil
			})
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <index> <description...>",
		Short: "Replace the description of the item at a 1-based index",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return usagef("usage: tada edit <index> <description...>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if text == "" {
				return usagef("edit: empty description")
			}
			return app.withController(cmd.Context(), func(ctl *view.Controller) error {
				t, err := pick(ctl, args[0])
				if err != nil {
					return err
				}
				ctl.BeginEdit(t.ID)
				if err := ctl.EditKey(cmd.Context(), t.ID, view.KeyEnter, text); err != nil {
					return err
				}
				ui.OK(cmd.OutOrStdout(), "edited")
				return nil
			})
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <index>",
		Short: "Remove the item at a 1-based index",
		Args:  exactArgs(1, "tada rm <index>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withController(cmd.Context(), func(ctl *view.Controller) error {
				t, err := pick(ctl, args[0])
				if err != nil {
					return err
				}
				if err := ctl.RemoveOne(cmd.Context(), t.ID); err != nil {
					return err
				}
				ui.OK(cmd.OutOrStdout(), "removed")
				return nil
			})
		},
	}
}

func newToggleAllCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-all",
		Short: "Mark every item done, or every item pending when all are done",
		Args:  exactArgs(0, "tada toggle-all"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withController(cmd.Context(), func(ctl *view.Controller) error {
				done := !ctl.AllDone()
				if err := ctl.ToggleAll(cmd.Context(), done); err != nil {
					return err
				}
				if done {
					ui.OK(cmd.OutOrStdout(), "all done")
				} else {
					ui.OK(cmd.OutOrStdout(), "all pending")
				}
				return nil
			})
		},
	}
}

func newClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every done item",
		Args:  exactArgs(0, "tada clear"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withController(cmd.Context(), func(ctl *view.Controller) error {
				if !ctl.ShowClearCompleted() {
					ui.OK(cmd.OutOrStdout(), "nothing to clear")
					return nil
				}
				if err := ctl.ClearCompleted(cmd.Context()); err != nil {
					return err
				}
				ui.OK(cmd.OutOrStdout(), "cleared")
				return nil
			})
		},
	}
}
