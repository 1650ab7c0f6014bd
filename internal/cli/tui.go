package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/query"
	"github.com/idilsaglam/tada/internal/route"
	"github.com/idilsaglam/tada/internal/tui"
	"github.com/idilsaglam/tada/internal/view"
)

// runTUI opens the interactive list on the fragment of --filter. The
// program mounts the controller once the screen is open.
func runTUI(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	t, closeT, err := app.dial(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		if err := closeT(); err != nil {
			app.log.Warn("close transport", "err", err)
		}
	}()
	ctl := view.New(query.New(t), app.viewOptions()...)
	defer ctl.Close()

	nav := route.NewHistory(route.FragmentFor(model.Filter(app.Filter)))
	return tui.Run(ctx, ctl, nav)
}
