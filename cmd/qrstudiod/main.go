// Command qrstudiod serves the generator, scanner and pairing view over
// HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/internal/config"
	"github.com/ericlevine/qrstudio/server"
)

func main() {
	cfgPath := flag.String("config", "qrstudio.toml", "configuration file, reloaded on change")
	listen := flag.String("listen", "", "listen address (overrides server.listen)")
	flag.Parse()

	if err := run(*cfgPath, *listen); err != nil {
		fmt.Fprintf(os.Stderr, "qrstudiod: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, listen string) error {
	loader := config.NewLoader(cfgPath)
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	qrstudio.SetLogger(logger)
	if listen != "" {
		cfg.Server.Listen = listen
	}

	srv := server.New(cfg)
	loader.OnChange(func(c *config.Config) {
		if listen != "" {
			c.Server.Listen = listen
		}
		srv.SetConfig(c)
		qrstudio.Logger().Info("configuration reloaded", "path", cfgPath)
	})
	if err := loader.Watch(); err != nil {
		qrstudio.Logger().Warn("configuration reload disabled", "err", err)
	}
	defer loader.Close()
	go func() {
		for err := range loader.Errors() {
			qrstudio.Logger().Warn("configuration reload failed", "err", err)
		}
	}()

	httpSrv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errc := make(chan error, 1)
	go func() {
		qrstudio.Logger().Info("listening", "addr", cfg.Server.Listen)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
