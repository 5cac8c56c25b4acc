package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Fullex26/linenotify/internal/config"
	"github.com/Fullex26/linenotify/internal/dispatch"
	"github.com/Fullex26/linenotify/internal/setup"
	"github.com/Fullex26/linenotify/pkg/models"
)

var (
	cfgPath string
	envPath string
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:          "linenotify",
		Short:        "🔔 linenotify — send LINE Notify messages and images",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
			return config.LoadEnvFile(envPath)
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultConfigPath, "config file path (falls back to $LINE_NOTIFY_TOKEN when missing)")
	root.PersistentFlags().StringVar(&envPath, "env-file", config.DefaultEnvPath, "path to env file for credentials")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		sendCmd(),
		testCmd(),
		historyCmd(),
		pruneCmd(),
		setupCmd(),
		versionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func openDispatcher() (*dispatch.Dispatcher, error) {
	cfg, err := config.LoadOrEnv(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	d, err := dispatch.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing dispatcher: %w", err)
	}
	return d, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func sendCmd() *cobra.Command {
	var p models.Payload
	cmd := &cobra.Command{
		Use:   "send [message...]",
		Short: "Send a message and/or image",
		Example: `  linenotify send -m "Backup finished"
  linenotify send "Disk almost full" --image-file /tmp/graph.png
  linenotify send --image-thumb https://example.com/t.jpg --image-full https://example.com/f.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if p.Message == "" && len(args) > 0 {
				p.Message = strings.Join(args, " ")
			}

			d, err := openDispatcher()
			if err != nil {
				return err
			}
			defer d.Close()

			if p.ImageFile != "" {
				if info, err := os.Stat(p.ImageFile); err == nil {
					slog.Debug("uploading image", "file", filepath.Base(p.ImageFile), "size", humanize.Bytes(uint64(info.Size())))
				}
			}

			ctx, cancel := signalContext()
			defer cancel()

			del, err := d.Send(ctx, p)
			if err != nil {
				return err
			}

			printDelivery(del)
			if del.Outcome != models.OutcomeDelivered {
				return fmt.Errorf("LINE Notify rejected the notification (status %d)", del.StatusCode)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&p.Message, "message", "m", "", "text message")
	cmd.Flags().StringVar(&p.ImageThumb, "image-thumb", "", "thumbnail image URL (requires --image-full)")
	cmd.Flags().StringVar(&p.ImageFull, "image-full", "", "fullsize image URL (requires --image-thumb)")
	cmd.Flags().StringVarP(&p.ImageFile, "image-file", "f", "", "local image file to upload")
	return cmd
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send a test notification to verify the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDispatcher()
			if err != nil {
				return err
			}
			defer d.Close()

			ctx, cancel := signalContext()
			defer cancel()

			fmt.Println("🔔 Sending test notification...")
			if _, err := d.Test(ctx); err != nil {
				return err
			}
			fmt.Println("✅ Test notification sent!")
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent deliveries",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDispatcher()
			if err != nil {
				return err
			}
			defer d.Close()

			stats, err := d.Stats(24)
			if errors.Is(err, dispatch.ErrHistoryDisabled) {
				fmt.Println("History is disabled (history.enabled: false)")
				return nil
			}
			if err != nil {
				return err
			}
			deliveries, err := d.History(limit)
			if err != nil {
				return err
			}

			fmt.Println("🔔 linenotify history")
			fmt.Println("─────────────────────────")
			fmt.Printf("  Delivered (24h): %d\n", stats.Counts[models.OutcomeDelivered])
			fmt.Printf("  Rejected (24h):  %d\n", stats.Counts[models.OutcomeRejected])
			fmt.Printf("  Failed (24h):    %d\n", stats.Counts[models.OutcomeFailed])
			fmt.Printf("  Last delivered:  %s\n", lastDelivered(stats))
			fmt.Println()

			if len(deliveries) == 0 {
				fmt.Println("  No deliveries recorded yet")
				return nil
			}
			fmt.Println("  Recent deliveries:")
			for _, del := range deliveries {
				fmt.Println("    " + historyLine(del))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of deliveries to show")
	return cmd
}

func pruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete deliveries older than history.retention_days",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDispatcher()
			if err != nil {
				return err
			}
			defer d.Close()

			pruned, err := d.Prune()
			if err != nil {
				return err
			}
			fmt.Printf("Pruned %d deliveries\n", pruned)
			return nil
		},
	}
}

func setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactive setup wizard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return setup.Run(cfgPath, envPath)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("linenotify v%s\nhttps://github.com/Fullex26/linenotify\n", dispatch.Version)
		},
	}
}
