package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zucenko/pingwin/server"
)

type Config struct {
	bind         string
	port         int
	httpPort     int
	adminPort    int
	level        string
	levelsDir    string
	players      int
	fishes       int
	newFishDelay time.Duration
	gameDuration time.Duration
	extension    time.Duration
	moveDebounce time.Duration
	seed         int64
	profile      bool
	verbose      bool
	logFormat    string
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.httpPort < 0 || c.httpPort > 65535 {
		return fmt.Errorf("invalid http port (must be between 0-65535 inclusive): %d", c.httpPort)
	}
	if c.adminPort < 0 || c.adminPort > 65535 {
		return fmt.Errorf("invalid admin port (must be between 0-65535 inclusive): %d", c.adminPort)
	}
	if c.logFormat != "text" && c.logFormat != "json" {
		return fmt.Errorf("invalid log format (must be text or json): %q", c.logFormat)
	}
	return c.session().Validate()
}

func (c *Config) session() server.Config {
	sc := server.DefaultConfig()
	sc.LevelName = c.level
	if c.levelsDir != "" {
		sc.Levels = os.DirFS(c.levelsDir)
	}
	sc.Players = c.players
	sc.Fishes = c.fishes
	sc.NewFishDelay = c.newFishDelay
	sc.GameDuration = c.gameDuration
	sc.Extension = c.extension
	sc.MoveDebounce = c.moveDebounce
	sc.Seed = c.seed
	return sc
}

func (c *Config) setupLogging() {
	if c.logFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	if c.verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("PINGWIN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "pingwin-server",
		Short:   "Authoritative server for the pingwin penguin fishing game.",
		Args:    cobra.ExactArgs(0),
		Version: releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			cfg.setupLogging()
			return Serve(cmd.Context(), cfg)
		},
	}

	defaults := server.DefaultConfig()
	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: PINGWIN_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8888, "tcp port players connect to (env: PINGWIN_PORT)")
	fs.IntVar(&cfg.httpPort, "http-port", 8080, "websocket port, 0 disables (env: PINGWIN_HTTP_PORT)")
	fs.IntVar(&cfg.adminPort, "admin-port", 0, "health, status and profiling port, 0 disables (env: PINGWIN_ADMIN_PORT)")
	fs.StringVarP(&cfg.level, "level", "l", defaults.LevelName, "level to play (env: PINGWIN_LEVEL)")
	fs.StringVar(&cfg.levelsDir, "levels-dir", "", "directory holding level files, empty uses the built-in levels (env: PINGWIN_LEVELS_DIR)")
	fs.IntVarP(&cfg.players, "players", "n", defaults.Players, "number of players in the game (env: PINGWIN_PLAYERS)")
	fs.IntVar(&cfg.fishes, "fishes", defaults.Fishes, "number of fish kept on the board (env: PINGWIN_FISHES)")
	fs.DurationVar(&cfg.newFishDelay, "new-fish-delay", defaults.NewFishDelay, "interval between fish spawns (env: PINGWIN_NEW_FISH_DELAY)")
	fs.DurationVar(&cfg.gameDuration, "game-duration", defaults.GameDuration, "length of a game, whole seconds (env: PINGWIN_GAME_DURATION)")
	fs.DurationVar(&cfg.extension, "extension", defaults.Extension, "sudden death extension on a draw, whole seconds (env: PINGWIN_EXTENSION)")
	fs.DurationVar(&cfg.moveDebounce, "move-debounce", defaults.MoveDebounce, "how long a moved penguin is marked moving, 0 disables (env: PINGWIN_MOVE_DEBOUNCE)")
	fs.Int64Var(&cfg.seed, "seed", 0, "random seed, 0 seeds from the clock (env: PINGWIN_SEED)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers on the admin port (env: PINGWIN_PROFILE)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display debug output (env: PINGWIN_VERBOSE)")
	fs.StringVar(&cfg.logFormat, "log-format", "text", "log format, text or json (env: PINGWIN_LOG_FORMAT)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("pingwin-server v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
