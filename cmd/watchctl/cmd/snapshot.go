package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"termwatch/internal/snapshot"
	"termwatch/internal/store"
	"termwatch/internal/store/postgres"
)

// openSource connects to the terminal database. Tests replace it.
var openSource = func(ctx context.Context, databaseURL string) (store.RecordSource, func() error, error) {
	db, err := postgres.New(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}
	return db, db.Close, nil
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print the terminal snapshot as JSON",
	Long:  `Read bays, truck compliance and safety incidents from the terminal database and print the snapshot a watchdog cycle would evaluate right now.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		databaseURL := viper.GetString("database_url")
		if databaseURL == "" {
			return errors.New("database url not set; use --database-url or WATCHCTL_DATABASE_URL")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		source, closeFn, err := openSource(ctx, databaseURL)
		if err != nil {
			return fmt.Errorf("connect to terminal database: %w", err)
		}
		defer closeFn()

		builder := snapshot.NewBuilder(source, snapshot.Config{
			VesselCapacityKL:          viper.GetFloat64("vessel_capacity_kl"),
			FallbackDischargeRateTPH:  viper.GetFloat64("fallback_discharge_rate_tph"),
			InboundTruckCount:         viper.GetInt("inbound_truck_count"),
			ThroughputPerActiveBayTPH: viper.GetFloat64("throughput_per_active_bay_tph"),
		})

		snap, err := builder.Build(ctx, time.Now())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	},
}

func init() {
	snapshotCmd.Flags().Float64("fallback-discharge", 6, "Discharge rate (TPH) assumed when no bay is active")

	snapshotCmd.Flags().Float64("per-bay-throughput", 6, "Throughput (TPH) of one active bay")

	rootCmd.AddCommand(snapshotCmd)
}
