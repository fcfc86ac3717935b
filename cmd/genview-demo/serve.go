package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	genviewecho "github.com/pthm/genview/adapters/echo"
	"github.com/pthm/genview/internal/demo"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, v.GetString("router"))
		},
	}
	cmd.Flags().String("addr", "", "listen address")
	cmd.Flags().String("renderer", "", "template renderer: pongo or templ")
	cmd.Flags().String("router", "", "router: std or echo")
	cmd.Flags().String("store", "", "store driver: memory or sqlite")
	_ = v.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("renderer", cmd.Flags().Lookup("renderer"))
	_ = v.BindPFlag("router", cmd.Flags().Lookup("router"))
	_ = v.BindPFlag("store.driver", cmd.Flags().Lookup("store"))
	return cmd
}

func serve(ctx context.Context, cfg demo.Config, router string) error {
	log := demo.NewLogger(os.Stderr, cfg.Log.Level)

	todos, closer, err := demo.OpenStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			log.Error().Err(err).Msg("closing store")
		}
	}()

	var key []byte
	if cfg.Secret != "" {
		key = []byte(cfg.Secret)
	} else {
		log.Warn().Msg("no secret configured, flash cookies will not survive a restart")
	}

	opts := demo.Options{Store: todos, Renderer: cfg.Renderer, Logger: log, Key: key}
	handler, err := buildHandler(router, opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Addr).
			Str("store", cfg.Store.Driver).
			Str("renderer", cfg.Renderer).
			Str("router", router).
			Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildHandler(router string, opts demo.Options) (http.Handler, error) {
	switch router {
	case "", "std":
		reg, err := demo.New(opts)
		if err != nil {
			return nil, err
		}
		return reg.Handler(), nil
	case "echo":
		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		r := genviewecho.Mount(e,
			genviewecho.WithKey(opts.Key),
			genviewecho.WithLogger(opts.Logger.With().Str("router", "echo").Logger()),
		)
		if err := demo.Register(r, r.Registry, opts); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown router %q", router)
	}
}
