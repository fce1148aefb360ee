package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"glbview/internal/config"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// options mirrors the persistent flags. Only flags the user set override the
// config file and environment.
type options struct {
	configPath   string
	addr         string
	modelsDir    string
	modelsPath   string
	loadTimeout  string
	sessionTTL   string
	maxUploadMB  int
	widgetScript string
	logLevel     string
	logJSON      bool
	corsEnabled  bool
	corsOrigins  string
}

func buildRootCmd() *cobra.Command { return buildRootCmdWith(&options{}) }

// buildRootCmdWith constructs the command tree bound to o.
func buildRootCmdWith(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "glbview",
		Short:         "Browse, upload and preview .glb models in the browser",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "Path to a YAML, JSON or TOML config file")
	pf.StringVar(&o.addr, "addr", config.DefaultAddr, "HTTP listen address")
	pf.StringVar(&o.modelsDir, "models-dir", config.DefaultModelsDir, "Directory scanned for *.glb files")
	pf.StringVar(&o.modelsPath, "models-path", config.DefaultModelsPath, "URL path the models directory is served under")
	pf.StringVar(&o.loadTimeout, "load-timeout", config.DefaultLoadTimeout.String(), "How long a model may stay loading without a widget signal")
	pf.StringVar(&o.sessionTTL, "session-ttl", config.DefaultSessionTTL.String(), "Close sessions idle for longer (0 disables)")
	pf.IntVar(&o.maxUploadMB, "max-upload-mb", config.DefaultMaxUploadMB, "Maximum upload size in MiB")
	pf.StringVar(&o.widgetScript, "widget-script", config.DefaultWidgetScript, "Script URL that defines the <model-viewer> element")
	pf.StringVar(&o.logLevel, "log-level", config.DefaultLogLevel, "Log level: debug|info|warn|error")
	pf.BoolVar(&o.logJSON, "log-json", false, "Emit JSON logs instead of console output")
	pf.BoolVar(&o.corsEnabled, "cors-enabled", false, "Enable CORS for a separately hosted page")
	pf.StringVar(&o.corsOrigins, "cors-origins", "", "Comma-separated list of allowed CORS origins")

	root.AddCommand(
		newServeCmd(o),
		newListCmd(o),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), "glbview", version)
			},
		},
	)
	return root
}

// resolveConfig applies flag > env > file > defaults.
func resolveConfig(cmd *cobra.Command, o *options, getenv func(string) string) (config.Config, error) {
	var cfg config.Config
	if o.configPath != "" {
		c, err := config.Load(o.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg.ApplyEnv(getenv)

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr = o.addr
	}
	if flags.Changed("models-dir") {
		cfg.ModelsDir = o.modelsDir
	}
	if flags.Changed("models-path") {
		cfg.ModelsPath = o.modelsPath
	}
	if flags.Changed("load-timeout") {
		cfg.LoadTimeout = o.loadTimeout
	}
	if flags.Changed("session-ttl") {
		cfg.SessionTTL = o.sessionTTL
	}
	if flags.Changed("max-upload-mb") {
		cfg.MaxUploadMB = o.maxUploadMB
	}
	if flags.Changed("widget-script") {
		cfg.WidgetScript = o.widgetScript
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-json") {
		cfg.LogJSON = o.logJSON
	}
	if flags.Changed("cors-enabled") {
		cfg.CORSEnabled = o.corsEnabled
	}
	if flags.Changed("cors-origins") {
		cfg.CORSOrigins = splitCSV(o.corsOrigins)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
