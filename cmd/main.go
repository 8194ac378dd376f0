// main.go собирает корневую cobra-команду и запускает её с контекстом, отменяемым по сигналу.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"palm-analyzer/config"
	telegram "palm-analyzer/internal/api"
	"palm-analyzer/internal/cli"
	"palm-analyzer/internal/container"
	"palm-analyzer/internal/infrastructure/analysis"
	"palm-analyzer/internal/infrastructure/camera"
	"palm-analyzer/internal/infrastructure/storage"
	"palm-analyzer/internal/logging"
	"palm-analyzer/internal/web"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		cancel()
		os.Exit(1)
	}
}

// deps общее для всех подкоманд
type deps struct {
	cfg       *config.Config
	container *container.Container
}

func newRootCommand() *cobra.Command {
	rt := &deps{}
	var logLevel string

	cmd := &cobra.Command{
		Use:           "palm-analyzer",
		Short:         "Palm line analysis client: Telegram bot, web UI and terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			log, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}

			rt.cfg = cfg
			rt.container = container.New(
				storage.NewMemorySessionRepository(),
				camera.NewGoCVCamera(cfg.CameraDevice),
				analysis.NewClient(cfg.AnalyzerURL, cfg.RequestTimeout),
				log,
			)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.container != nil {
				_ = rt.container.Log.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	cmd.AddCommand(
		newBotCommand(rt),
		newWebCommand(rt),
		newAnalyzeCommand(rt),
		newCaptureCommand(rt),
	)

	return cmd
}

func newBotCommand(rt *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rt.cfg.TelegramToken == "" {
				return errors.New("TELEGRAM_TOKEN is required")
			}

			bot, err := telegram.NewBot(rt.cfg.TelegramToken, rt.container.CaptureService, rt.container.Log,
				telegram.WithIdleTTL(rt.cfg.SessionTTL))
			if err != nil {
				return fmt.Errorf("create bot: %w", err)
			}

			rt.container.Log.Info("bot is running", zap.String("analyzer", rt.cfg.AnalyzerURL))
			return bot.Run(cmd.Context())
		},
	}
}

func newWebCommand(rt *deps) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the browser UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = rt.cfg.WebAddr
			}

			srv, err := web.NewServer(rt.container.CaptureService, rt.container.Log, web.WithIdleTTL(rt.cfg.SessionTTL))
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to WEB_ADDR)")
	return cmd
}

func newAnalyzeCommand(rt *deps) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze an image file and print the result",
		Example: `  # Analyze a photo
  palm-analyzer analyze palm.jpg

  # Analyze and save the processed image
  palm-analyzer analyze palm.jpg --download ./out`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view := cli.NewTerminalView(cmd.OutOrStdout(), outDir)
			runner := cli.NewRunner(rt.container.CaptureService, view)
			return runner.AnalyzeFile(cmd.Context(), args[0], outDir != "")
		},
	}

	cmd.Flags().StringVar(&outDir, "download", "", "Directory to save the processed image to")
	return cmd
}

func newCaptureCommand(rt *deps) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Take a photo with the camera and analyze it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := cli.NewTerminalView(cmd.OutOrStdout(), outDir)
			runner := cli.NewRunner(rt.container.CaptureService, view)
			return runner.CaptureAndAnalyze(cmd.Context(), outDir != "")
		},
	}

	cmd.Flags().StringVar(&outDir, "download", "", "Directory to save the processed image to")
	return cmd
}
