// Command intro serves the introductory API used throughout the
// project documentation: a handful of small routes that together
// exercise path, query, form, file, body, header, and cookie binding,
// with the generated OpenAPI document and the docs UIs mounted next to
// them.
//
// Run:
//
//	go run ./cmd/intro
//
// Generate the OpenAPI document without serving:
//
//	go run ./cmd/intro -spec                      — print JSON to stdout
//	go run ./cmd/intro -spec -yaml                — print YAML instead
//	go run ./cmd/intro -spec -o openapi.json      — write to file
//
// Then explore:
//
//	GET http://localhost:8000/                    — redirects to the docs
//	GET http://localhost:8000/intro/rapidoc       — interactive docs
//	GET http://localhost:8000/intro/openapi.json  — OpenAPI document
//
// Configuration comes from INTRO_-prefixed environment variables or a
// .env file; see config.go for the full list.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/vialapi/vial"
)

func main() {
	specFlag := flag.Bool("spec", false, "Print the OpenAPI document and exit")
	yamlFlag := flag.Bool("yaml", false, "Emit YAML instead of JSON (requires -spec)")
	outFlag := flag.String("o", "", "Output file for the document (requires -spec)")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("configuration rejected")
	}

	r := newRouter(cfg)

	if *specFlag {
		if err := writeSpec(r, *outFlag, *yamlFlag); err != nil {
			logger.Fatal().Err(err).Msg("document generation failed")
		}
		return
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info().
		Str("addr", cfg.Addr).
		Bool("debug", cfg.Debug).
		Str("docs", "/intro/rapidoc").
		Msg("server started")

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	}

	logger.Info().Msg("server stopped")
}

// writeSpec renders the OpenAPI document to stdout or outFile.
func writeSpec(r *vial.Router, outFile string, asYAML bool) error {
	write := r.WriteSpec
	if asYAML {
		write = r.WriteSpecYAML
	}
	if outFile == "" {
		return write(os.Stdout)
	}

	f, err := os.Create(outFile) //nolint:gosec // user-provided CLI flag
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		//nolint:errcheck,gosec // report the write error, not the close
		f.Close()
		return err
	}
	return f.Close()
}
