// config.go
package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codenames-sync/api"
	"codenames-sync/identity"
	"codenames-sync/logger"
)

// Config holds every flag of every subcommand.
type Config struct {
	server          string
	requestTimeout  time.Duration
	livenessTimeout time.Duration
	sessionFile     string
	reconnect       bool
	verbose         bool
	logDir          string
	env             string

	// serve
	bind        string
	port        int
	publicURL   string
	firstGameID int
	metrics     bool
	xray        bool

	// create
	qrFile string
	qrSize int
}

func (c *Config) validate() error {
	u, err := url.Parse(c.server)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid --server (must be an http or https URL): %q", c.server)
	}
	if c.requestTimeout <= 0 {
		return errors.New("--request-timeout must be positive")
	}
	if c.livenessTimeout <= 0 {
		return errors.New("--liveness-timeout must be positive")
	}
	return nil
}

func (c *Config) validateServe() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.firstGameID < 1 {
		return fmt.Errorf("--first-game-id must be positive: %d", c.firstGameID)
	}
	return nil
}

// resolvedPublicURL is where share links point.
func (c *Config) resolvedPublicURL() string {
	if c.publicURL != "" {
		return strings.TrimSuffix(c.publicURL, "/")
	}
	host := c.bind
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.port)
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CODENAMES")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "codenames",
		Short:         "Lobby client and reference backend for multiplayer Codenames.",
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.SetLogLevel(cfg.env)
			logger.SetVerbose(cfg.verbose)
			if cfg.logDir != "" {
				if err := logger.InitLogger(cfg.logDir); err != nil {
					return err
				}
			}
			return nil
		},
	}

	defaultSession, err := identity.DefaultPath()
	if err != nil {
		defaultSession = ""
	}

	pfs := cmd.PersistentFlags()
	pfs.StringVarP(&cfg.server, "server", "s", "http://localhost:8080", "backend base URL (env: CODENAMES_SERVER)")
	pfs.DurationVar(&cfg.requestTimeout, "request-timeout", api.DefaultTimeout, "timeout for each backend request (env: CODENAMES_REQUEST_TIMEOUT)")
	pfs.DurationVar(&cfg.livenessTimeout, "liveness-timeout", 60*time.Second, "silence after which the live channel is considered dead (env: CODENAMES_LIVENESS_TIMEOUT)")
	pfs.StringVar(&cfg.sessionFile, "session-file", defaultSession, "where the session id is stored (env: CODENAMES_SESSION_FILE)")
	pfs.BoolVar(&cfg.reconnect, "reconnect", true, "reconnect the live channel after errors (env: CODENAMES_RECONNECT)")
	pfs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display debug output (env: CODENAMES_VERBOSE)")
	pfs.StringVar(&cfg.logDir, "log-dir", "", "also write logs to a file in this directory (env: CODENAMES_LOG_DIR)")
	pfs.StringVar(&cfg.env, "env", "development", "environment name; production hides debug logs (env: CODENAMES_ENV)")
	bindFlags(v, pfs)

	cmd.AddCommand(
		newServeCmd(cfg, v),
		newCreateCmd(cfg, v),
		newWatchCmd(cfg),
		newJoinCmd(cfg),
		newStartCmd(cfg),
		newSessionCmd(cfg),
	)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("codenames v{{.Version}}\n")

	return cmd
}

// bindFlags lets CODENAMES_* environment variables fill flags the user did
// not set on the command line.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}
