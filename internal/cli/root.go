package cli

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
)

const DefaultConfigFile = "config.json"

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ytcs",
		Short: "YouTube comment sentiment analysis",
		Long: heredoc.Doc(`
			Fetches the comments of YouTube videos, rates each one from 1 to 5 stars
			with a sentiment model and exports the results to CSV, JSON, SQLite and,
			optionally, XLSX and Google Sheets.
		`),
		Example: heredoc.Doc(`
			$ ytcs fetch https://www.youtube.com/watch?v=dQw4w9WgXcQ
			$ ytcs stats dQw4w9WgXcQ
			$ ytcs bot
		`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		fetchCmd(),
		statsCmd(),
		importCmd(),
		clearCmd(),
		botCmd(),
		webCmd(),
	)

	cmd.PersistentFlags().StringP("config", "c", DefaultConfigFile, "Config file path")
	cmd.MarkPersistentFlagFilename("config")

	return cmd
}
