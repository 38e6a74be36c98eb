package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mindcanvas/infrastructure/config"
	"mindcanvas/infrastructure/di"
	"mindcanvas/interfaces/http/rest"
)

func serveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, loader, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if opts.direction != "" {
				direction, err := opts.resolveDirection(cfg)
				if err != nil {
					return err
				}
				cfg.Layout.Direction = direction.String()
			}

			container, cleanup, err := di.InitializeContainer(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := container.Restore(cmd.Context()); err != nil {
				return err
			}

			if cfg.IsDevelopment() && loader.File() != "" {
				watcher, err := config.NewWatcher(loader, cfg, container.Logger)
				if err != nil {
					container.Logger.Warn("Configuration hot reloading disabled", zap.Error(err))
				} else {
					watcher.OnChange(container.ApplyConfig)
					defer watcher.Stop()
				}
			}

			Brand.Fprintf(cmd.ErrOrStderr(), "mindcanvas listening on %s\n", cfg.Address())
			return rest.Serve(cmd.Context(), cfg, container.Handler, container.Logger)
		},
	}
}
