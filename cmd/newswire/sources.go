package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"newswire-api/engine"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List registered sources with their owners and rule sets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(client *engine.Client) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "OWNER\tRULES\tURL")
			for _, s := range client.Sources() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Owner, s.Rules.Name, s.URL)
			}
			return w.Flush()
		})
	},
}
