package shipit

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/adatari/shipit/internal/logs"
	"github.com/adatari/shipit/internal/runtime"
	"github.com/adatari/shipit/internal/state"
	"github.com/adatari/shipit/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"hist"},
		Short:   "Show past releases",
		Long:    "List the most recent releases recorded on this machine, newest first.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logs.Debugf("running history...")

			rt := runtime.FromContextOrPanic(cmd.Context())

			signalsCtx, stopSignalsCtx := signal.NotifyContext(rt.Ctx(), os.Interrupt, syscall.SIGTERM)
			defer stopSignalsCtx()

			journal, err := state.DefaultJournal(signalsCtx)
			if err != nil {
				return err
			}
			rt.OnShutdown(func(context.Context) {
				if err := journal.Close(); err != nil {
					logs.Warnf("closing release journal: %v", err)
				}
			})

			releases, err := journal.Recent(signalsCtx, limit)
			if err != nil {
				return err
			}

			if len(releases) == 0 {
				fmt.Println("No releases recorded yet")
				return nil
			}

			columns := []ui.Column{
				{Header: "When"},
				{Header: "Image"},
				{Header: "Version"},
				{Header: "Registry", MaxWidth: 40},
				{Header: "Outcome"},
			}

			table := ui.NewTable(columns...)

			for _, r := range releases {
				table.AddRow(
					r.CreatedAt.Local().Format(time.DateTime),
					r.ImageName,
					r.Version,
					r.Registry,
					r.Outcome,
				)
			}

			fmt.Println("")
			table.Render(os.Stdout)
			fmt.Println("")

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of releases to show")

	return cmd
}
