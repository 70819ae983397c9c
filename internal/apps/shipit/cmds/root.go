package shipit

import (
	"github.com/spf13/cobra"

	releasecmd "github.com/adatari/shipit/internal/apps/shipit/cmds/release"
	"github.com/adatari/shipit/internal/logs"
	"github.com/adatari/shipit/internal/runtime"
)

var verbosity int

func Execute(rt *runtime.Runtime) error {
	rootCmd := &cobra.Command{
		Use:   "shipit [PATH]",
		Short: "Build, version and push container images",
		Long: `shipit builds the image at PATH, stamps a timestamp version, pushes the
versioned and latest tags to your registry and writes a deployment
descriptor for downstream tooling.

By default, 'shipit' is equivalent to 'shipit release [PATH]'.
If PATH is omitted, the current working directory is used.`,
		Args: cobra.MaximumNArgs(1),
		// Default behavior is the same as 'release'
		RunE: releasecmd.ReleaseCmdRunE,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logs.SetDebugVerbosity(verbosity)
			return nil
		},
		// we will handle that
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase verbosity level")

	// Root should accept the same flags as `release`
	releasecmd.AttachReleaseCmdFlags(rootCmd)

	rootCmd.AddCommand(releasecmd.NewReleaseCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd.ExecuteContext(rt.Ctx())
}
