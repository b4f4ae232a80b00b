package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func resetViper() {
	viper.Reset()
	viper.SetEnvPrefix("WATCHCTL")
	viper.AutomaticEnv()
}

// resetFlags restores every flag to its default; cobra keeps parsed values
// between Execute calls on the same command tree.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	for _, c := range append([]*cobra.Command{rootCmd}, rootCmd.Commands()...) {
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommand_EnvVarBinding(t *testing.T) {
	resetViper()

	t.Setenv("WATCHCTL_DATABASE_URL", "postgres://env/terminal")
	t.Setenv("WATCHCTL_URL", "http://watchdog:6162")

	if got := viper.GetString("database_url"); got != "postgres://env/terminal" {
		t.Errorf("expected database url from env var, got: %s", got)
	}
	if got := viper.GetString("url"); got != "http://watchdog:6162" {
		t.Errorf("expected url from env var, got: %s", got)
	}
}

func TestRootCommand_FlagBeatsEnv(t *testing.T) {
	resetViper()
	t.Setenv("WATCHCTL_INBOUND_TRUCK_COUNT", "0")

	// With zero inbound trucks nothing rises; the flag must win for a forecast.
	out, err := execute(t, "forecast", "--level", "99", "--discharge", "5", "--inbound-trucks", "84")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains([]byte(out), []byte("Tank Top")) {
		t.Errorf("expected forecast output, got: %s", out)
	}
}

func TestRootCommand_ExecuteReturnsNoError(t *testing.T) {
	resetViper()

	if _, err := execute(t, "--help"); err != nil {
		t.Errorf("root command should execute without error: %v", err)
	}
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	want := map[string]bool{"snapshot": false, "forecast": false, "status": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Use]; ok {
			want[c.Use] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("expected %q subcommand to be registered with root command", name)
		}
	}
}

func TestExecute_ReturnsError(t *testing.T) {
	resetViper()
	resetFlags()

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"unknown-command-xyz"})

	if err := Execute(); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestRootCommand_CustomConfigFile(t *testing.T) {
	resetViper()

	path := filepath.Join(t.TempDir(), "watchctl.yaml")
	content := "url: http://from-config:9999\ndatabase_url: postgres://config/terminal\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfgFile = path
	defer func() { cfgFile = "" }()
	initConfig()

	if got := viper.GetString("url"); got != "http://from-config:9999" {
		t.Errorf("expected url from config file, got: %s", got)
	}
	if got := viper.GetString("database_url"); got != "postgres://config/terminal" {
		t.Errorf("expected database url from config file, got: %s", got)
	}
}
