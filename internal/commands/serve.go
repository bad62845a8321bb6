package commands

import (
	"os"
	"os/signal"
	"syscall"

	"axiapac.com/backoffice/infrastructure/communication"
	"axiapac.com/backoffice/infrastructure/events"
	"axiapac.com/backoffice/security"
	"axiapac.com/backoffice/web"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		secret, err := security.DecodeSecret(cfg.Auth.SigningSecret)
		if err != nil {
			return err
		}

		dm, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer dm.Close()

		publisher := events.Connect(cfg.Redis)
		defer publisher.Close()

		if os.Getenv("GIN_MODE") == "" {
			gin.SetMode(gin.ReleaseMode)
		}

		router := web.NewRouter(web.Deps{
			Dm:        dm,
			JWTSecret: secret,
			Location:  location(),
			Publisher: publisher,
			Notifier:  communication.ConnectSlack(cfg.Slack),
			Logger:    logger,
		})

		return web.Serve(ctx, cfg.Server, router, logger)
	},
}

