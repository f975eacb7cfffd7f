// Command wheelhouse installs prebuilt insightface wheels into a ComfyUI
// installation from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/richinsley/wheelhouse"
)

var (
	version = "dev" // overridden via ldflags at build time
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger creates a logger writing to stderr at the given level.
func newLogger(level charmlog.Level) *charmlog.Logger {
	return charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func run(ctx context.Context) error {
	var verbose bool
	logger := newLogger(charmlog.InfoLevel)

	root := &cobra.Command{
		Use:          "wheelhouse",
		Short:        "Install prebuilt insightface wheels into ComfyUI",
		Long:         `wheelhouse resolves, downloads, and installs the insightface wheel matching your ComfyUI installation's Python version, handling both portable (embedded interpreter) and regular installs.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(charmlog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newInstallCmd(logger))
	root.AddCommand(newVersionsCmd())

	return root.ExecuteContext(ctx)
}

func newInstallCmd(logger *charmlog.Logger) *cobra.Command {
	var (
		pythonVersion string
		installType   string
		force         bool
		rootHint      string
		catalogPath   string
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Download and install the insightface wheel",
		RunE: func(cmd *cobra.Command, args []string) error {
			override, err := wheelhouse.ParseInstallType(installType)
			if err != nil {
				return err
			}

			catalog := wheelhouse.DefaultCatalog()
			if catalogPath != "" {
				catalog, err = wheelhouse.LoadCatalogFile(catalogPath)
				if err != nil {
					return err
				}
				logger.Debug("loaded catalog override", "path", catalogPath, "versions", catalog.Versions())
			}

			progress := func(message string, current, total int64) {
				if total > 0 {
					logger.Debug(message, "current", current, "total", total)
				} else {
					logger.Debug(message, "current", current)
				}
			}

			installer := wheelhouse.New(catalog, progress)
			installer.RootHint = rootHint

			outcome := installer.Install(cmd.Context(), wheelhouse.InstallRequest{
				PythonVersion:  pythonVersion,
				InstallType:    override,
				ForceReinstall: force,
			})

			fmt.Fprintln(cmd.OutOrStdout(), outcome.StatusLine())
			if outcome.Severity == wheelhouse.SeverityError {
				return fmt.Errorf("installation failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pythonVersion, "python", "3.11", "target Python version (e.g. 3.11)")
	cmd.Flags().StringVar(&installType, "type", "auto", "installation type: auto, portable, or regular")
	cmd.Flags().BoolVar(&force, "force", false, "force reinstall even if already installed")
	cmd.Flags().StringVar(&rootHint, "root", "", "ComfyUI root directory (skips auto-detection)")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "TOML file overriding the built-in wheel catalog")

	return cmd
}

func newVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List Python versions with catalog entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, v := range wheelhouse.DefaultCatalog().Versions() {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
}
