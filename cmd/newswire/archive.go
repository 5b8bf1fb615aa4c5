package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"newswire-api/engine"
	"newswire-api/pkg/utils/duration"
)

var flagArchiveDir string

var archiveCmd = &cobra.Command{
	Use:   "archive [url...]",
	Short: "Fetch sources and write today's markdown archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := engine.ValidateSources(args); err != nil {
			return err
		}
		return withClient(func(client *engine.Client) error {
			path, err := client.Archive(cmd.Context(), args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}, archiveDirOption()...)
	},
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archive files, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(client *engine.Client) error {
			entries, err := client.Archives()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDATE\tSIZE\tAGE")
			for _, e := range entries {
				age := duration.Humanize(time.Since(e.ModTime).Round(time.Second))
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.Name, e.Date, e.Size, age)
			}
			return w.Flush()
		}, archiveDirOption()...)
	},
}

var archiveShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print one archive file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(client *engine.Client) error {
			data, err := client.ReadArchive(args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}, archiveDirOption()...)
	},
}

func init() {
	archiveCmd.PersistentFlags().StringVar(&flagArchiveDir, "dir", "", "archive directory (default: ARCHIVE_DIR)")
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveShowCmd)
}

func archiveDirOption() []engine.Option {
	if flagArchiveDir == "" {
		return nil
	}
	return []engine.Option{engine.WithArchiveDir(flagArchiveDir)}
}
