package cmd

import (
	"fmt"

	"github.com/KaramelBytes/scorelens-cli/internal/dataset"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <file.xlsx>",
	Short: "List the sheets of an XLSX workbook with their --sheet-index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheets, err := dataset.Sheets(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(sheets) == 0 {
			fmt.Fprintln(out, "No sheets found")
			return nil
		}
		for i, s := range sheets {
			fmt.Fprintf(out, "%d. %s\n", i+1, s)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
