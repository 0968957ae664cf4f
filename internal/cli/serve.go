package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatch/internal/config"
	"github.com/jmylchreest/swatch/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve attribute extraction over HTTP",
		Long: `Start the HTTP service.

Routes:
  GET  /               welcome message
  GET  /health         health and version information
  POST /process-image  multipart upload with an "image" field; returns the
                       extracted attributes as JSON

The pattern model is loaded once at startup; a missing or invalid model
is fatal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd)
		},
	}

	flags := cmd.Flags()
	flags.String(config.KeyServerAddr, ":5000", "listen address")
	flags.Int(config.KeyServerMaxUploadMB, 10, "maximum upload size in MiB")
	flags.Float64(config.KeyServerRateLimit, 20, "sustained requests per second (0 disables)")
	flags.Int(config.KeyServerRateBurst, 40, "request burst size")
	addPipelineFlags(flags)
	return cmd
}

func (a *app) runServe(cmd *cobra.Command) error {
	if a.logger.GetLevel() > hclog.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	pipeline, closer, err := a.openPipeline()
	if err != nil {
		return err
	}
	defer closer.Close()

	settings := a.cfg.Server()
	srv := server.New(pipeline, server.Options{
		MaxUploadBytes: settings.MaxUploadBytes,
		RateLimit:      settings.RateLimit,
		RateBurst:      settings.RateBurst,
		ReadTimeout:    settings.ReadTimeout,
		Logger:         a.logger.Named("server"),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, settings.Addr)
}
