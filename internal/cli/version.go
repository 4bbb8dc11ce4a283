package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnovate/bactocloud-dl/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bactocloud-dl %s (built %s)\n", version.Version, version.BuildTime)
		},
	}
}
