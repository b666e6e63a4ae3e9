/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/transhub/internal/config"
	"github.com/valpere/transhub/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web interface",
	Long: `Serve the translation form and JSON API.

  GET  /                         web UI
  POST /api/v1/translate         {"text", "source", "target"}
  POST /api/v1/broadcast         NDJSON stream, full variant only
  POST /api/v1/broadcast/export  <basename>.txt download, full variant only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		gw, db, err := buildGateway(cfg)
		if err != nil {
			return err
		}
		defer gw.Close()
		if db != nil {
			defer db.Close()
		}

		srv := web.New(gw, web.Options{
			Full:       cfg.Variant == config.VariantFull,
			AutoDetect: true,
		})

		// no write timeout: broadcasts stream for as long as the targets take
		server := &http.Server{
			Addr:              cfg.Listen,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		}

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		errCh := make(chan error, 1)
		go func() {
			log.Printf("transhub %s (%s variant, %s backend) listening on %s",
				version, cfg.Variant, gw.Backend().Name(), cfg.Listen)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("could not listen on %s: %w", cfg.Listen, err)
		case <-stop:
		}

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		log.Println("Server stopped.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", "", "Address to listen on (default :8080)")
}
