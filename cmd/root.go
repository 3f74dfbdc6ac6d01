package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"transfer/internal/config"
)

const usageLine = "Usage: transfer <copy|move> <source_path> <destination_path>"

var (
	// ErrUsage is returned when the command line has the wrong shape
	ErrUsage = errors.New("wrong number of arguments")
	// errReported marks errors already shown to the user
	errReported = errors.New("reported")
)

// app carries the state shared by the commands of one invocation
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *logrus.Logger
	stdout  io.Writer
	stderr  io.Writer
}

// newRootCmd builds the command tree
func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "transfer <copy|move> <source_path> <destination_path>",
		Short: "Resumable recursive directory copy with live progress",
		Long: `transfer copies a directory tree to a destination, skipping files that are
already present with the same size so an interrupted transfer can be resumed.

Progress is shown as a single status line with percentage, transferred and
total size, throughput and estimated time remaining.

Usage:
  Copy a tree:  transfer copy /path/to/source /path/to/destination
  Resume:       run the same command again`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ErrUsage
		},
	}

	d := config.NewDefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.transfer.yaml)")
	flags.Int("chunk-size", d.Transfer.ChunkSize, "bytes read and written per chunk")
	flags.Bool("strict", d.Transfer.Strict, "exit with status 1 when any file failed")
	flags.String("display", d.Display.Mode, "progress display: line, bar or none")
	flags.String("color", d.Display.Color, "colored output: auto, always or never")
	flags.String("log-level", d.Log.Level, "diagnostic log level (debug, info, warn, error)")

	_ = a.v.BindPFlag("transfer.chunk_size", flags.Lookup("chunk-size"))
	_ = a.v.BindPFlag("transfer.strict", flags.Lookup("strict"))
	_ = a.v.BindPFlag("display.mode", flags.Lookup("display"))
	_ = a.v.BindPFlag("display.color", flags.Lookup("color"))
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))

	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	rootCmd.AddCommand(newTransferCmd(a, verbCopy), newTransferCmd(a, verbMove))
	return rootCmd
}

func newApp(stdout, stderr io.Writer) *app {
	v := viper.New()
	v.SetEnvPrefix("TRANSFER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	config.SetDefaults(v)

	return &app{
		v:      v,
		stdout: stdout,
		stderr: stderr,
	}
}

// initialize reads the config file and environment, then sets up logging
func (a *app) initialize() error {
	if err := a.initConfig(); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.logger = newLogger(cfg, a.stderr)

	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.WithField("file", used).Debug("using config file")
	}
	return nil
}

// initConfig reads in config file and ENV variables
func (a *app) initConfig() error {
	if a.cfgFile != "" {
		// Use config file from the flag
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		// Search config in home directory with name ".transfer" (without extension)
		a.v.AddConfigPath(home)
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".transfer")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func newLogger(cfg *config.Config, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(cfg.LogLevel())
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return logger
}

// Execute runs the command line and exits with its status code.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes args and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUsage):
		fmt.Fprintln(stdout, usageLine)
		return 1
	case errors.Is(err, errReported):
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintln(stdout, usageLine)
		return 1
	}
}

// createContext creates a context that cancels on interrupt signals
func createContext(logger logrus.FieldLogger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.WithField("signal", sig.String()).Debug("received signal, stopping transfer")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
