// -- cmd/root.go --
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mintfeed/mintfeed-cli/internal/config"
	"github.com/mintfeed/mintfeed-cli/internal/observability"
)

var (
	cfgFile string
	// appCfg is the resolved configuration every subcommand reads from.
	// Populated in PersistentPreRunE, so RunE bodies can rely on it.
	appCfg config.Interface
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mintfeed",
	Short: "Mintfeed attaches NFT images from your wallet to social posts.",
	// Version is dynamically set at build time. See cmd/version.go.
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// This function runs before any command, setting up config and logging.
		if err := initializeConfig(); err != nil {
			return err
		}

		cfg, err := config.NewConfigFromViper(viper.GetViper())
		if err != nil {
			// Initialize a fallback logger so the failure is still visible.
			observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "mintfeed-cli"})
			return err
		}

		// Persistent flags override whatever the file and environment said.
		if cmd.Flags().Changed("headless") {
			headless, _ := cmd.Flags().GetBool("headless")
			cfg.SetBrowserHeadless(headless)
		}
		if cmd.Flags().Changed("debug") {
			debug, _ := cmd.Flags().GetBool("debug")
			cfg.SetBrowserDebug(debug)
		}
		if cmd.Flags().Changed("wallet") {
			addr, _ := cmd.Flags().GetString("wallet")
			cfg.SetWalletAddress(addr)
		}
		appCfg = cfg

		observability.InitializeLogger(cfg.Logger())
		observability.GetLogger().Info("Starting mintfeed", zap.String("version", Version))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. The context carries OS signal cancellation from main.
func Execute(ctx context.Context) {
	defer observability.Sync()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger := observability.GetLogger(); logger != nil {
			logger.Error("Command execution failed", zap.Error(err))
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml or ~/.mintfeed/config.yaml)")
	rootCmd.PersistentFlags().Bool("headless", false, "run the browser without a visible window")
	rootCmd.PersistentFlags().Bool("debug", false, "enable devtools protocol debug logging")
	rootCmd.PersistentFlags().String("wallet", "", "wallet address whose NFTs are listed (overrides config)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newGalleryCmd())
	rootCmd.AddCommand(newAttachCmd())
}

// initializeConfig reads in the config file and ENV variables if set.
func initializeConfig() error {
	v := viper.GetViper()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".mintfeed"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("MINTFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults/env vars.
	}
	return nil
}
