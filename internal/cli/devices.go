package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bnovate/bactocloud-dl/internal/api"
)

// newDevicesCmd lists the organization's devices.
func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List the organization's devices",
		Long: `List the serial number and name of every physical device the API key
can see. Use the serial numbers with 'download --device'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, err := api.NewClient(cfg)
			if err != nil {
				return err
			}

			devices, err := client.ListDevices(cmd.Context())
			if err != nil {
				return err
			}

			if len(devices) == 0 {
				fmt.Println("No devices found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SERIAL\tNAME")
			for _, d := range devices {
				name := d.Name
				if name == "" {
					name = "Unnamed"
				}
				fmt.Fprintf(w, "%s\t%s\n", d.SerialNumber, name)
			}
			return w.Flush()
		},
	}
}
