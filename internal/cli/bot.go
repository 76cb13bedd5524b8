package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"stock-researcher/internal/bot"
)

// addBotCommands adds the Telegram bot command.
func addBotCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newBotCmd(app))
}

func newBotCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Long: `Starts the Telegram bot and polls for commands until interrupted.
Requires a bot token in credentials.toml or TELEGRAM_BOT_TOKEN.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			token := app.Config.Credentials.Telegram.BotToken
			if token == "" {
				return fmt.Errorf("telegram bot token not configured")
			}
			if app.Researcher == nil {
				return fmt.Errorf("research pipeline unavailable")
			}

			b, err := bot.New(bot.Options{
				Token:          token,
				Provider:       app.Provider,
				NewsProvider:   app.News,
				Researcher:     app.Researcher,
				Universe:       app.Universe,
				Params:         app.Params(),
				Thresholds:     app.Thresholds(),
				DefaultPeriod:  app.Config.Data.DefaultPeriod,
				Cooldown:       time.Duration(app.Config.Bot.CooldownSeconds) * time.Second,
				PollTimeout:    app.Config.Bot.PollTimeout,
				DigestSchedule: app.Config.Bot.DigestSchedule,
				DigestEnabled:  app.Config.Bot.DigestEnabled,
				AdminIDs:       app.Config.Bot.AdminIDs,
				Logger:         app.Logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app.Logger.Info().Msg("Starting Telegram bot, press Ctrl+C to stop")
			if err := b.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}
