package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GrainArc/TrialMap/routers"
	"github.com/GrainArc/TrialMap/views"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func serveCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			srv := &http.Server{
				Addr:    a.cfg.MainRouter,
				Handler: a.engine(),
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.Info("listening", "addr", srv.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			a.log.Info("shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func (a *app) engine() *gin.Engine {
	if !a.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	experiments := views.NewExperimentHandler(a.importer, a.plans, a.cfg.Import.MaxUploadBytes)
	messages := views.NewMessageHandler(a.hub, a.cfg.Messages.AllowedOrigins, a.log)
	permissions := views.NewPermissionHandler(a.resolver, a.roles, a.cfg.Permission.EntityTypes)

	routers.ExperimentRouters(r, experiments, messages)
	routers.PermissionRouters(r, permissions)
	return r
}
