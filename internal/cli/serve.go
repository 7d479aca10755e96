package cli

import (
	"Unbewohnte/YTCS/internal/bot"
	"context"
	"errors"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
)

func newBot(ctx context.Context, app *app) (*bot.Bot, error) {
	services, err := app.services(ctx)
	if err != nil {
		return nil, err
	}

	deps := bot.Deps{
		Config: app.conf,
		Runner: services.pipeline,
		Ollama: services.ollama,
		Logger: app.logger,
	}
	if services.database != nil {
		deps.Store = services.database
	}

	b := bot.NewBot(deps)
	services.pipeline.OnProgress = b.Progress

	return b, nil
}

func botCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Example: heredoc.Doc(`
			$ ytcs bot
			$ ytcs bot --web
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			b, err := newBot(cmd.Context(), app)
			if err != nil {
				return err
			}

			withWeb, _ := cmd.Flags().GetBool("web")
			if !withWeb {
				return b.StartTelegram(cmd.Context())
			}

			server, err := bot.NewWebServer(b)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			errs := make(chan error, 2)
			go func() { errs <- b.StartTelegram(ctx) }()
			go func() { errs <- server.Start(ctx) }()

			// Whichever stops first takes the other down
			first := <-errs
			cancel()
			return errors.Join(first, <-errs)
		},
	}

	cmd.Flags().Bool("web", false, "Serve the web console as well")

	return cmd
}

func webCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "web",
		Short: "Run the web console",
		Example: heredoc.Doc(`
			$ YTCS_WEB_PASSWORD=s3cret ytcs web
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			b, err := newBot(cmd.Context(), app)
			if err != nil {
				return err
			}

			server, err := bot.NewWebServer(b)
			if err != nil {
				return err
			}

			return server.Start(cmd.Context())
		},
	}
}
