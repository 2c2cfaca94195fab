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
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/blacktop/texttoimage/internal/api"
	"github.com/blacktop/texttoimage/internal/config"
	"github.com/blacktop/texttoimage/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// flags
	logger       *log.Logger
	verbose      bool
	debugLog     string
	prompt       string
	model        string
	serverURL    string
	outputFolder string
	protocol     string
	openGallery  bool
	noRecent     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "texttoimage",
	Short: "Text-to-image generator TUI",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			logger.Error("Invalid configuration", "err", err)
			os.Exit(1)
		}
		// validate flags
		if !slices.Contains(tui.ValidProtocols(), cfg.Protocol) {
			logger.Error(fmt.Sprintf("Invalid display protocol (must be one of: %s)", strings.Join(tui.ValidProtocols(), ", ")), "protocol", cfg.Protocol)
			os.Exit(1)
		}
		if len([]rune(prompt)) > cfg.MaxPromptLength {
			logger.Error(fmt.Sprintf("Prompt is too long (max %d characters)", cfg.MaxPromptLength))
			os.Exit(1)
		}

		client, err := api.NewClient(cfg.ServerURL, api.WithTimeout(cfg.Timeout))
		if err != nil {
			logger.Error("Invalid server URL", "err", err)
			os.Exit(1)
		}

		// the alt screen owns the terminal, so logs go to a file or nowhere
		if verbose {
			f, err := os.OpenFile(debugLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				logger.Error("Error opening debug log", "err", err)
				os.Exit(1)
			}
			defer f.Close()
			log.SetOutput(f)
		} else {
			log.SetOutput(io.Discard)
		}

		page := tui.PageGenerate
		if openGallery {
			page = tui.PageGallery
		}
		// run
		p := tea.NewProgram(tui.New(tui.Options{
			Context:      cmd.Context(),
			Backend:      client,
			Model:        cfg.Model,
			Prompt:       prompt,
			Page:         page,
			ShowRecent:   !noRecent,
			OutputFolder: cfg.OutputFolder,
			Protocol:     cfg.Protocol,
			PerPage:      cfg.PerPage,
		}), tea.WithAltScreen())
		m, err := p.Run()
		log.SetOutput(os.Stderr)
		if err != nil {
			logger.Error("Error running program", "err", err)
			os.Exit(1)
		}
		if m, ok := m.(tui.Model); ok {
			if s := m.Session(); s.Filename != "" {
				logger.Info("Last generated image", "id", s.ImageID, "download", client.Resolve(s.DownloadURL))
			}
		}
	},
}

// loadConfig reads the environment and lets explicitly set flags override it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.ServerURL = serverURL
	}
	if flags.Changed("model") {
		cfg.Model = model
	}
	if flags.Changed("output") {
		cfg.OutputFolder = outputFolder
	}
	if flags.Changed("protocol") {
		cfg.Protocol = protocol
	}
	return cfg, cfg.Validate()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Override the default error level style.
	styles := log.DefaultStyles()
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR!!").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("204")).
		Foreground(lipgloss.Color("0"))
	// Add a custom style for key `err`
	styles.Keys["err"] = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
	styles.Values["err"] = lipgloss.NewStyle().Bold(true)
	logger = log.New(os.Stderr)
	logger.SetStyles(styles)
	log.SetDefault(logger)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Verbose output")
	rootCmd.Flags().StringVar(&debugLog, "debug-log", "texttoimage-debug.log", "File the TUI writes debug logs to when verbose")
	rootCmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Prompt to pre-fill the generation form with")
	rootCmd.Flags().StringVarP(&model, "model", "m", config.DefaultModel, "Model to generate with (overrides TTI_MODEL env var)")
	rootCmd.Flags().StringVarP(&serverURL, "server", "s", config.DefaultServerURL, "Backend URL (overrides TTI_SERVER_URL env var)")
	rootCmd.Flags().StringVarP(&outputFolder, "output", "o", "", "Folder downloaded images are saved to")
	rootCmd.Flags().StringVar(&protocol, "protocol", config.DefaultProtocol, fmt.Sprintf("Image preview protocol (%s)", strings.Join(tui.ValidProtocols(), ", ")))
	rootCmd.Flags().BoolVarP(&openGallery, "gallery", "g", false, "Start on the gallery page")
	rootCmd.Flags().BoolVar(&noRecent, "no-recent", false, "Hide the recent images strip")
	rootCmd.MarkFlagDirname("output")
}
