package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "watchctl",
	Short: "watchctl inspects the terminal watchdog and its inputs",
	Long: `watchctl is the operator tool for the predictive terminal watchdog.

It reads the same terminal database the watchdog polls, runs the vessel
forecaster by hand, and checks a running watchdog's probes.

Common workflows:

  Print the snapshot the next cycle would evaluate:
    watchctl snapshot

  Ask the forecaster about a hypothetical vessel state:
    watchctl forecast --level 92 --discharge 5 --inbound-trucks 12

  Check a running watchdog:
    watchctl status --url http://localhost:6162

Configuration:
  Flags, WATCHCTL_* environment variables or $HOME/.watchctl.yaml:
    WATCHCTL_DATABASE_URL   Terminal database (snapshot)
    WATCHCTL_URL            Watchdog ops endpoint (default: http://localhost:6162)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd)
	},
}

// flagKeys maps flag names to viper keys.
var flagKeys = map[string]string{
	"url":                "url",
	"database-url":       "database_url",
	"capacity":           "vessel_capacity_kl",
	"inbound-trucks":     "inbound_truck_count",
	"fallback-discharge": "fallback_discharge_rate_tph",
	"per-bay-throughput": "throughput_per_active_bay_tph",
	"level":              "forecast_level",
	"discharge":          "forecast_discharge",
	"threshold":          "discharge_threshold_tph",
	"truck-rate":         "avg_inbound_truck_rate_tph",
	"json":               "forecast_json",
}

// bindFlags binds the flags of the command being executed, inherited ones
// included, so a changed flag beats env and config file values.
func bindFlags(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".watchctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".watchctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "WATCHCTL_VARNAME"
	viper.SetEnvPrefix("WATCHCTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.watchctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:6162", "Watchdog ops endpoint")

	rootCmd.PersistentFlags().String("database-url", "", "Terminal database connection string")

	rootCmd.PersistentFlags().Float64("capacity", 10000, "Vessel capacity in KL")

	rootCmd.PersistentFlags().Int("inbound-trucks", 10, "Inbound truck count")
}
