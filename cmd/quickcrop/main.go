package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/menta2k/quickcrop/internal/config"
	"github.com/menta2k/quickcrop/internal/utils"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// exitError carries a specific process exit code
type exitError struct {
	Code    int
	Message string
}

func (e *exitError) Error() string {
	return e.Message
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Args[1:])
	stop()
	utils.Sync()

	if err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run builds the command tree and executes it against args
func run(ctx context.Context, outW io.Writer, args []string) error {
	root := newRootCmd(outW)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// app holds state shared by the subcommands once flags are parsed
type app struct {
	out        io.Writer
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd(outW io.Writer) *cobra.Command {
	a := &app{out: outW}

	root := &cobra.Command{
		Use:           "quickcrop",
		Short:         "Trim transparent margins from images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetOut(outW)
	root.SetErr(outW)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default "+config.GetConfigPath()+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug|info|warn|error")

	root.AddCommand(
		newCropCmd(a),
		newBoxCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads the configuration and initializes logging
func (a *app) setup() error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.Load(a.configPath)
	} else {
		a.cfg, err = config.LoadOrDefault(config.GetConfigPath())
	}
	if err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := utils.InitLogger(a.cfg.Log.Mode); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := a.cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	return utils.SetLevel(level)
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(a.out, "quickcrop %s (commit %s, built %s)\n", Version, GitCommit, BuildTime)
			return nil
		},
	}
}
