package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/theme"
	"github.com/Zachkp/portfolio/internal/web"
)

var (
	cfg    config.Config
	logger *zap.Logger

	exportDir   string
	exportTheme string
)

var rootCmd = &cobra.Command{
	Use:           "portfolio",
	Short:         "Single-page personal portfolio",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.LogLevel, cfg.Dev)
		if err != nil {
			return err
		}
		if os.Getenv(gin.EnvGinMode) == "" && !cfg.Dev {
			gin.SetMode(gin.ReleaseMode)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the portfolio over HTTP",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the page and its assets as static files",
	Args:  cobra.NoArgs,
	RunE:  export,
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", "dist", "output directory")
	exportCmd.Flags().StringVar(&exportTheme, "theme", "light", "colour scheme: light or dark")
	rootCmd.AddCommand(serveCmd, exportCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	p, err := content.Load(cfg.ContentPath)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	s, err := web.New(cfg, p, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

func export(cmd *cobra.Command, args []string) error {
	p, err := content.Load(cfg.ContentPath)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	if err := web.Export(exportDir, p, theme.ParseMode(exportTheme), logger); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	logger.Info("exported", zap.String("dir", exportDir))
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "portfolio:", err)
		os.Exit(1)
	}
}
