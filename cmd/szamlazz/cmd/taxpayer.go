package cmd

import (
	"github.com/spf13/cobra"
)

var taxpayerCmd = &cobra.Command{
	Use:   "taxpayer <taxid>",
	Short: "Query a Hungarian tax payer by tax identifier",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaxPayer,
}

func init() {
	rootCmd.AddCommand(taxpayerCmd)
}

func runTaxPayer(cmd *cobra.Command, args []string) error {
	client, err := buildClient()
	if err != nil {
		return err
	}
	info, err := client.QueryTaxPayer(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(info)
}
