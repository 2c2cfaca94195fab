/*
Copyright © 2024-2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/blacktop/texttoimage/internal/config"
	"github.com/blacktop/texttoimage/internal/inference"
	"github.com/blacktop/texttoimage/internal/server"
	"github.com/blacktop/texttoimage/internal/storage"
	"github.com/blacktop/texttoimage/internal/store"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	addr   string
	dbPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the image generation backend",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
		cfg, err := config.Load()
		if err != nil {
			logger.Error("Invalid configuration", "err", err)
			os.Exit(1)
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr = addr
		}
		if cmd.Flags().Changed("db") {
			cfg.DatabasePath = dbPath
		}

		db, err := store.Open(cfg.DatabasePath)
		if err != nil {
			logger.Error("Error opening database", "path", cfg.DatabasePath, "err", err)
			os.Exit(1)
		}
		defer db.Close()

		files, err := storage.NewFileStore(cfg.UploadFolder)
		if err != nil {
			logger.Error("Error preparing upload folder", "path", cfg.UploadFolder, "err", err)
			os.Exit(1)
		}

		srv, err := server.New(server.Options{
			Store:           db,
			Files:           files,
			Generator:       inference.NewClient(cfg.HuggingFaceBaseURL, cfg.HuggingFaceAPIKey),
			DefaultModel:    config.DefaultModel,
			PerPage:         cfg.PerPage,
			MaxPromptLength: cfg.MaxPromptLength,
		})
		if err != nil {
			logger.Error("Error creating server", "err", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := srv.ListenAndServe(ctx, cfg.Addr); err != nil {
			logger.Error("Server error", "err", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&addr, "addr", "a", ":5000", "Address to listen on (overrides PORT env var)")
	serveCmd.Flags().StringVar(&dbPath, "db", "texttoimage.db", "SQLite database path (overrides DATABASE_PATH env var)")
}
