package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd assembles the kdcpay command tree.
func NewRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:   "kdcpay",
		Short: "KDCpay payment adapter for the ticketing site",
		Long: `kdcpay serves the KDCpay checkout form and handles the gateway's return,
notify and cancel callbacks, recording each payment outcome with the order system.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (env KDCPAY_* overrides it)")

	root.AddCommand(newServeCmd(&configFile))
	root.AddCommand(newChecksumCmd(&configFile))
	root.AddCommand(newOutcomesCmd(&configFile))
	root.AddCommand(newConfigCmd(&configFile))
	return root
}

func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
