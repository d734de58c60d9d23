package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goExilon/internal/config"
)

var forceInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write an example configuration file",
	Long: `Write an example exilon.toml holding every default: the launch fee
tiers, the sell decay windows, the buy throttle, the burn cap and the
storage and journal settings.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigPaths().Main
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil && !forceInit {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.SaveExampleConfig(path); err != nil {
			return err
		}
		fmt.Fprintf(output(cmd), "Wrote %s\n", path)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		params, err := cfg.TokenParams()
		if err != nil {
			return err
		}

		out := output(cmd)
		fmt.Fprintf(out, "Configuration OK\n")
		fmt.Fprintf(out, "  Token:        %s (%s), %d decimals\n", params.Name, params.Symbol, params.Decimals)
		fmt.Fprintf(out, "  Supply:       %s\n", params.TotalSupply.Format(int32(params.Decimals)))
		fmt.Fprintf(out, "  Fee tiers:    liquidity %d%%, burn %d%%, distribution %d%%, marketing %d%%\n",
			params.Fees.Liquidity, params.Fees.Burn, params.Fees.Distribution, params.Fees.Marketing)
		fmt.Fprintf(out, "  Burn cap:     %d%%\n", params.BurnCapPercent)
		fmt.Fprintf(out, "  Storage:      %s at %s (%s)\n", cfg.Storage.Backend, cfg.Storage.Path, cfg.Storage.Compression)
		if cfg.Journal.Enabled() {
			fmt.Fprintf(out, "  Journal:      %s %s\n", cfg.Journal.Driver, cfg.Journal.DSN)
		} else {
			fmt.Fprintf(out, "  Journal:      disabled\n")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configValidateCmd)

	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite an existing file")
}
