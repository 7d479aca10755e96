package cli

import (
	"Unbewohnte/YTCS/internal/comment"
	"Unbewohnte/YTCS/internal/config"
	"Unbewohnte/YTCS/internal/pipeline"
	"errors"
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func fetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch URL...",
		Short: "Fetch, classify and export the comments of one or more videos",
		Example: heredoc.Doc(`
			$ ytcs fetch https://www.youtube.com/watch?v=dQw4w9WgXcQ
			$ ytcs fetch --max 500 --min-likes 10 --sort likes "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s"
			$ ytcs fetch --max-polarity -0.5 --sort date --asc v=dQw4w9WgXcQ
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			req, err := buildRequest(cmd.Flags(), app.conf.Defaults, args)
			if err != nil {
				return err
			}

			services, err := app.services(cmd.Context())
			if err != nil {
				return err
			}
			services.pipeline.OnProgress = func(message string) {
				fmt.Fprintln(cmd.ErrOrStderr(), message)
			}

			app.logger.Info("Starting run", "request_id", req.ID.String(), "urls", len(req.URLs))
			result, err := services.pipeline.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), result.Markdown())
			for _, video := range result.Videos {
				if video.VideoID != "" && video.Err == nil {
					return nil
				}
			}
			return errors.New("no video could be fetched")
		},
	}

	cmd.Flags().Int("max", 0, "Maximum comments per video (default from config)")
	cmd.Flags().Int64("min-likes", 0, "Drop comments with fewer likes")
	cmd.Flags().Float64("min-polarity", -1, "Lowest polarity kept")
	cmd.Flags().Float64("max-polarity", 1, "Highest polarity kept")
	cmd.Flags().String("sort", "", "Sort by likes, date or polarity")
	cmd.Flags().Bool("asc", false, "Sort ascending")

	return cmd
}

// buildRequest starts from the configured defaults and applies only the flags
// that were set explicitly
func buildRequest(flags *pflag.FlagSet, defaults config.DefaultsConf, urls []string) (pipeline.Request, error) {
	req := pipeline.NewRequest(urls, defaults.MaxResults)
	req.Filter = defaults.Filter
	req.Sort = comment.SortKey(defaults.Sort)
	req.Descending = defaults.Descending

	var err error
	if flags.Changed("max") {
		if req.MaxResults, err = flags.GetInt("max"); err != nil {
			return req, err
		}
		if req.MaxResults <= 0 {
			return req, fmt.Errorf("--max must be positive, got %d", req.MaxResults)
		}
	}
	if flags.Changed("min-likes") {
		if req.Filter.MinLikes, err = flags.GetInt64("min-likes"); err != nil {
			return req, err
		}
		if req.Filter.MinLikes < 0 {
			return req, errors.New("--min-likes must not be negative")
		}
	}
	if flags.Changed("min-polarity") {
		if req.Filter.MinPolarity, err = flags.GetFloat64("min-polarity"); err != nil {
			return req, err
		}
	}
	if flags.Changed("max-polarity") {
		if req.Filter.MaxPolarity, err = flags.GetFloat64("max-polarity"); err != nil {
			return req, err
		}
	}
	if req.Filter.MinPolarity < -1 || req.Filter.MaxPolarity > 1 || req.Filter.MinPolarity > req.Filter.MaxPolarity {
		return req, fmt.Errorf("polarity bounds must satisfy -1 <= min <= max <= 1, got [%v, %v]",
			req.Filter.MinPolarity, req.Filter.MaxPolarity)
	}
	if flags.Changed("sort") {
		value, _ := flags.GetString("sort")
		if req.Sort, err = comment.ParseSortKey(value); err != nil {
			return req, err
		}
	}
	if flags.Changed("asc") {
		ascending, _ := flags.GetBool("asc")
		req.Descending = !ascending
	}

	return req, nil
}
