package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"termwatch/internal/alert"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check a running watchdog's probes",
	Long:  `Call /healthz and /readyz on a running watchdog. Liveness only says the process is serving; readiness also requires the terminal database.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewOpsClient(viper.GetString("url"))

		cmd.Printf("%sWatchdog%s %s\n", colorBold, colorReset, client.BaseURL)
		cmd.Println("──────────────────────────────")

		healthy := printProbe(cmd, client, "Liveness", "/healthz")
		ready := printProbe(cmd, client, "Readiness", "/readyz")

		if !healthy || !ready {
			return errors.New("watchdog is not ready")
		}
		return nil
	},
}

func printProbe(cmd *cobra.Command, client *OpsClient, label, path string) bool {
	resp, err := client.Probe(path)
	if err != nil {
		cmd.Printf("%s%-10s%s %s✗%s %v\n", colorDim, label+":", colorReset, colorRed, colorReset, err)
		return false
	}
	cmd.Printf("%s%-10s%s %s✓%s %s\n", colorDim, label+":", colorReset, colorGreen, colorReset, resp.Status)
	return true
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func colorizePriority(p alert.Priority) string {
	switch p {
	case alert.PriorityCritical:
		return colorRed + string(p) + colorReset
	case alert.PriorityWarning:
		return colorYellow + string(p) + colorReset
	case alert.PriorityInfo:
		return colorCyan + string(p) + colorReset
	default:
		return string(p)
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
