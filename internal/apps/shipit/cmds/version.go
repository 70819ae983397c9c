package shipit

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adatari/shipit/internal/version"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of shipit",
		Long:  `Display the current version of shipit.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s\n", version.Get())
		},
	}

	return cmd
}
