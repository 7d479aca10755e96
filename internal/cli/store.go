package cli

import (
	"Unbewohnte/YTCS/internal/db"
	"Unbewohnte/YTCS/internal/export"
	"Unbewohnte/YTCS/internal/report"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [VIDEO_ID]",
		Short: "Print the sentiment distribution of stored comments",
		Example: heredoc.Doc(`
			$ ytcs stats
			$ ytcs stats dQw4w9WgXcQ
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			database, err := app.openDatabase()
			if err != nil {
				return err
			}

			videoID := ""
			if len(args) == 1 {
				videoID = args[0]
			}

			polarities, err := database.Polarities(cmd.Context(), videoID)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), report.Summarize(polarities).Markdown())
			if videoID != "" {
				return nil
			}

			breakdown, err := videoBreakdown(cmd.Context(), database)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), breakdown)
			return nil
		},
	}
}

// videoBreakdown lists the bucket counts of every stored video
func videoBreakdown(ctx context.Context, database *db.DB) (string, error) {
	videoIDs, err := database.VideoIDs(ctx)
	if err != nil {
		return "", err
	}
	if len(videoIDs) == 0 {
		return "", nil
	}

	var out strings.Builder
	out.WriteString("\n*Por vídeo:*\n")
	for _, videoID := range videoIDs {
		polarities, err := database.Polarities(ctx, videoID)
		if err != nil {
			return "", err
		}
		distribution := report.Bucket(polarities)
		out.WriteString(fmt.Sprintf("- `%s`: %d comentários (negativo %d, neutro %d, positivo %d)\n",
			videoID, distribution.Total(), distribution.Negative, distribution.Neutral, distribution.Positive))
	}

	return out.String(), nil
}

func clearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every comment from the SQLite store",
		Example: heredoc.Doc(`
			$ ytcs clear --yes
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			confirmed, _ := cmd.Flags().GetBool("yes")
			if !confirmed {
				return errors.New("refusing to delete stored comments without --yes")
			}

			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			database, err := app.openDatabase()
			if err != nil {
				return err
			}

			count, err := database.CountComments(cmd.Context())
			if err != nil {
				return err
			}
			if err := database.DeleteAllComments(cmd.Context()); err != nil {
				return err
			}

			app.logger.Info("Deleted stored comments", "count", count, "database", database.Name())
			fmt.Fprintf(cmd.OutOrStdout(), "%d comentários removidos\n", count)
			return nil
		},
	}

	cmd.Flags().Bool("yes", false, "Confirm the deletion")

	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Load a CSV, JSON or XLSX export into the SQLite store",
		Example: heredoc.Doc(`
			$ ytcs import novo/comentarios.csv
			$ ytcs import backup.xlsx
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			records, err := export.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			database, err := app.openDatabase()
			if err != nil {
				return err
			}
			if err := database.SaveComments(cmd.Context(), records); err != nil {
				return err
			}

			app.logger.Info("Imported comments", "file", args[0], "count", len(records), "database", database.Name())
			return nil
		},
	}
}
