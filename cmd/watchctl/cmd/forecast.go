package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"termwatch/internal/alert"
	"termwatch/internal/forecast"
	"termwatch/internal/snapshot"
	"termwatch/pkg/api"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Run the vessel forecaster on given numbers",
	Long: `Evaluate the time-to-tank-top model for a hypothetical vessel state without
touching the database. Prints the alert the watchdog would raise, or "No risk".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.ForecastRequest{
			LevelPercent:      viper.GetFloat64("forecast_level"),
			DischargeRateTPH:  viper.GetFloat64("forecast_discharge"),
			InboundTruckCount: viper.GetInt("inbound_truck_count"),
			VesselCapacityKL:  viper.GetFloat64("vessel_capacity_kl"),
		}
		if req.LevelPercent < 0 || req.LevelPercent > 100 {
			return fmt.Errorf("level must be between 0 and 100, got %v", req.LevelPercent)
		}
		if req.DischargeRateTPH < 0 {
			return fmt.Errorf("discharge must not be negative, got %v", req.DischargeRateTPH)
		}

		params := forecast.Params{
			DischargeThresholdTPH:  viper.GetFloat64("discharge_threshold_tph"),
			AvgInboundTruckRateTPH: viper.GetFloat64("avg_inbound_truck_rate_tph"),
		}
		inv := snapshot.Inventory{
			LevelPercent:      req.LevelPercent,
			VesselCapacityKL:  req.VesselCapacityKL,
			InboundTruckCount: req.InboundTruckCount,
			DischargeRateTPH:  req.DischargeRateTPH,
		}

		res, atRisk := forecast.Evaluate(inv, params)
		a, _ := forecast.Predict(inv, params)

		if viper.GetBool("forecast_json") {
			out := api.ForecastResponse{AtRisk: atRisk, EvaluatedAt: time.Now().UTC()}
			if atRisk {
				hours := res.HoursToFull
				out.HoursToFull = &hours
				out.Alert = a.Payload(out.EvaluatedAt)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		if !atRisk {
			cmd.Printf("%s✓%s No risk: vessel at %.1f%%, discharge %.1f TPH\n",
				colorGreen, colorReset, req.LevelPercent, req.DischargeRateTPH)
			return nil
		}
		printForecast(cmd, a, res)
		return nil
	},
}

func printForecast(cmd *cobra.Command, a alert.Alert, res forecast.Result) {
	cmd.Printf("%s%s%s\n", colorBold, a.Headline, colorReset)
	cmd.Println("──────────────────────────────")
	cmd.Printf("%sPriority:%s    %s\n", colorDim, colorReset, colorizePriority(a.Priority))
	cmd.Printf("%sNet rise:%s    %.2f TPH (inbound %.2f, discharge %.2f)\n",
		colorDim, colorReset, res.NetRiseTPH, res.InboundFillTPH, res.DischargeRateTPH)
	cmd.Printf("%sHeadroom:%s    %.0f KL\n", colorDim, colorReset, res.RemainingKL)
	cmd.Printf("%sInsight:%s     %s\n", colorDim, colorReset, a.Insight)
	cmd.Printf("%sAction:%s      %s (%s)\n", colorDim, colorReset, a.Action.Label, a.Action.URL)
}

func init() {
	forecastCmd.Flags().Float64("level", 0, "Vessel level percent (0-100)")

	forecastCmd.Flags().Float64("discharge", 6, "Current discharge rate in TPH")

	forecastCmd.Flags().Float64("threshold", 12, "Discharge rate (TPH) at or above which no forecast is made")

	forecastCmd.Flags().Float64("truck-rate", 1.25, "Average fill contribution of one inbound truck (TPH)")

	forecastCmd.Flags().Bool("json", false, "Print the result as JSON")

	rootCmd.AddCommand(forecastCmd)
}
