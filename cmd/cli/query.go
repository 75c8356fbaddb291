package cli

import (
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "query the rpc of a running node",
}

func init() {
	queryCmd.AddCommand(heightCmd)
	queryCmd.AddCommand(finalityCmd)
	queryCmd.AddCommand(accountCmd)
	queryCmd.AddCommand(resourceUsageCmd)
}

var (
	heightCmd = &cobra.Command{
		Use:   "height",
		Short: "query the tick height and last id of the node",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.Height())
		},
	}

	finalityCmd = &cobra.Command{
		Use:   "finality",
		Short: "query the leader finality of the node",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.Finality())
		},
	}

	accountCmd = &cobra.Command{
		Use:   "account <hex key>",
		Short: "query an account and its vote state",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.Account(args[0]))
		},
	}

	resourceUsageCmd = &cobra.Command{
		Use:   "resource-usage",
		Short: "query the cpu, memory and disk usage of the node",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.ResourceUsage())
		},
	}
)
