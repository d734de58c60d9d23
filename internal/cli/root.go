package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goExilon/internal/config"
	"github.com/LeJamon/goExilon/internal/di"
)

var (
	// Global flags
	configFile string
	envFile    string
	debug      bool
	verbose    bool
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "exilon",
	Short: "goExilon - Exilon token engine simulator",
	Long: `goExilon simulates the Exilon token on a local chain: the fee router,
the reflection ledger, the anti-whale throttle and sell decay, the
auto-liquidity injector and the burn cap, trading against a constant
product exchange.

Scenarios are YAML scripts of trades and administrative calls. Runs are
journaled to SQL and their state is snapshotted to a key-value store.`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path (default: defaults and environment only)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", config.DefaultConfigPaths().Env, "dotenv file with EXILON_ overrides")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output to console")
}

// loadConfig reads the configuration named by the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(config.ConfigPaths{Main: configFile, Env: envFile})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger returns the engine logger: stderr with --verbose or --debug,
// silent otherwise.
func newLogger() *log.Logger {
	if quiet || (!verbose && !debug) {
		return log.New(io.Discard, "", 0)
	}
	flags := log.LstdFlags
	if debug {
		flags |= log.Lmicroseconds | log.Lshortfile
	}
	return log.New(os.Stderr, "exilon: ", flags)
}

// output returns where command results are printed.
func output(cmd *cobra.Command) io.Writer {
	if quiet {
		return io.Discard
	}
	return cmd.OutOrStdout()
}

// newProvider registers every service built from cfg. Callers must Close
// the provider.
func newProvider(cfg *config.Config) (*di.Provider, error) {
	p := di.NewProvider(di.New(), cfg, newLogger())
	if err := p.RegisterAll(); err != nil {
		return nil, err
	}
	return p, nil
}

// runContext returns the command context, or a background one when the
// command runs outside Execute.
func runContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
