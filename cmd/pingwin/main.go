package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nsf/termbox-go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zucenko/pingwin/client"
)

const releaseVersion = "0.1.0"

type Config struct {
	address      string
	levelsDir    string
	moveDebounce time.Duration
	linger       time.Duration
	logFile      string
	verbose      bool
}

func (c *Config) validate() error {
	if c.address == "" {
		return fmt.Errorf("server address must not be empty")
	}
	if c.moveDebounce < 0 {
		return fmt.Errorf("invalid move debounce: %s", c.moveDebounce)
	}
	return nil
}

// setupLogging sends log output to a file since the terminal belongs to the
// game. Without --log-file nothing is logged.
func (c *Config) setupLogging() (io.Closer, error) {
	if c.verbose {
		log.SetLevel(log.DebugLevel)
	}
	if c.logFile == "" {
		log.SetOutput(io.Discard)
		return io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	return f, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &Config{}
	if err := newCmd(cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("PINGWIN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "pingwin [address]",
		Short:   "Terminal client for the pingwin penguin fishing game.",
		Args:    cobra.MaximumNArgs(1),
		Version: releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.address = args[0]
			}
			if err := cfg.validate(); err != nil {
				return err
			}
			closer, err := cfg.setupLogging()
			if err != nil {
				return err
			}
			defer closer.Close()
			return play(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.address, "address", "a", "localhost:8888", "server host:port, or a ws:// url (env: PINGWIN_ADDRESS)")
	fs.StringVar(&cfg.levelsDir, "levels-dir", "", "directory holding level files, empty uses the built-in levels (env: PINGWIN_LEVELS_DIR)")
	fs.DurationVar(&cfg.moveDebounce, "move-debounce", 100*time.Millisecond, "minimum time between own moves, drops key repeat (env: PINGWIN_MOVE_DEBOUNCE)")
	fs.DurationVar(&cfg.linger, "linger", 3*time.Second, "how long the final message stays on screen (env: PINGWIN_LINGER)")
	fs.StringVar(&cfg.logFile, "log-file", "", "file to write logs to (env: PINGWIN_LOG_FILE)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "log debug output (env: PINGWIN_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("pingwin v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func play(ctx context.Context, cfg *Config) error {
	stream, err := client.Dial(ctx, cfg.address)
	if err != nil {
		return err
	}
	if err := termbox.Init(); err != nil {
		stream.Close()
		return err
	}
	defer termbox.Close()

	display := &termDisplay{}
	c := client.New(stream, display, levelsFS(cfg.levelsDir))
	c.MoveDebounce = cfg.moveDebounce
	display.remaining = c.Remaining

	inputs := make(chan client.Input)
	done := make(chan struct{})
	defer close(done)
	go loopKeyboard(inputs, done)
	go loopTicker(inputs, done)

	err = c.Run(ctx, inputs)
	if err != nil {
		display.ShowText(fmt.Sprintf("Error: %v", err))
		display.Refresh()
	}
	select {
	case <-time.After(cfg.linger):
	case <-ctx.Done():
	}
	return err
}

// levelsFS returns nil for the built-in levels.
func levelsFS(dir string) fs.FS {
	if dir == "" {
		return nil
	}
	return os.DirFS(dir)
}
