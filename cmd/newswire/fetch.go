package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"newswire-api/engine"
)

var (
	flagSuccessOnly bool
	flagCompact     bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [url...]",
	Short: "Fetch sources synchronously and print results as JSON",
	Long:  "Fetch every given URL (or every registered source when none is given), waiting for all of them, and print one result per source as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := engine.ValidateSources(args); err != nil {
			return err
		}
		return withClient(func(client *engine.Client) error {
			results := client.FetchAll(cmd.Context(), args)
			if flagSuccessOnly {
				results = engine.FilterSuccessful(results)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if !flagCompact {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(results)
		})
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&flagSuccessOnly, "success-only", false, "drop failed sources from the output")
	fetchCmd.Flags().BoolVar(&flagCompact, "compact", false, "print JSON on a single line")
}
