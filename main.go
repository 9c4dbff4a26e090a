package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wedding-backend/auth"
	"wedding-backend/config"
	"wedding-backend/controllers"
	"wedding-backend/routes"
	"wedding-backend/services"
	"wedding-backend/store"
)

func newLogger(cfg *config.Config) zerolog.Logger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.LogFormat, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "wedding-backend").Logger()
}

func buildRouter(cfg *config.Config, db *store.Handle, log zerolog.Logger) *gin.Engine {
	rsvpService := services.NewRSVPService(db, log, cfg.Timeouts.RSVP)
	wellWishService := services.NewWellWishService(db, log, cfg.Timeouts.WellWish)
	visitService := services.NewVisitService(db, log, cfg.Timeouts.Visit, cfg.IPHashSalt)
	dashboardService := services.NewDashboardService(db, log, cfg.Timeouts.Dashboard, cfg.WeddingDate, cfg.DemoFallback)
	exportService := services.NewExportService(db, log, cfg.Timeouts.Dashboard)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL, time.Now)
	authenticator := auth.NewAuthenticator(cfg.DashboardPassword, cfg.DashboardPasswordHash)

	return routes.SetupRouter(routes.Controllers{
		RSVP:      controllers.NewRSVPController(rsvpService, log),
		WellWish:  controllers.NewWellWishController(wellWishService, log),
		Visit:     controllers.NewVisitController(visitService, log),
		Auth:      controllers.NewAuthController(authenticator, tokens, log),
		Dashboard: controllers.NewDashboardController(dashboardService, exportService, log),
		Health:    controllers.NewHealthController(db, cfg.Timeouts.Health),
	}, tokens, cfg.CORSOrigins, log)
}

func serve(cfg *config.Config, log zerolog.Logger) error {
	gin.SetMode(gin.ReleaseMode)

	db := store.NewHandle(cfg.Opener(log), log.With().Str("component", "store").Logger())
	defer db.Close()

	// connect eagerly so a bad url shows up at boot; requests retry lazily
	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.Ping(startCtx); err != nil {
		log.Warn().Err(err).Str("database", cfg.DatabaseKind()).Msg("database not reachable at startup")
	} else {
		log.Info().Str("database", cfg.DatabaseKind()).Msg("database ready")
	}
	cancel()

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           buildRouter(cfg, db, log),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-quit:
	}
	log.Info().Msg("shutdown signal received")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func newRootCmd() *cobra.Command {
	cfg := config.LoadConfig()
	log := newLogger(cfg)

	root := &cobra.Command{
		Use:          "wedding-backend",
		Short:        "Wedding RSVP and dashboard API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfg, log)
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfg, log)
		},
	})

	var exportType, exportFormat, exportOut string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write RSVPs or well wishes as CSV or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := services.ParseExportKind(exportType)
			if err != nil {
				return err
			}
			format, err := services.ParseExportFormat(exportFormat)
			if err != nil {
				return err
			}

			db := store.NewHandle(cfg.Opener(log), log)
			defer db.Close()

			var out io.Writer = cmd.OutOrStdout()
			if exportOut != "" {
				f, err := os.Create(exportOut)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return services.NewExportService(db, log, cfg.Timeouts.Dashboard).
				Export(cmd.Context(), out, kind, format)
		},
	}
	exportCmd.Flags().StringVar(&exportType, "type", "rsvps", "rsvps or wellwishes")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv or json")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	root.AddCommand(exportCmd)

	root.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Check the database connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			db := store.NewHandle(cfg.Opener(log), log)
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeouts.Dashboard)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				return fmt.Errorf("%s: %w", cfg.DatabaseKind(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", cfg.DatabaseKind())
			return nil
		},
	})

	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
