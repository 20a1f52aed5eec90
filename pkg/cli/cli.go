// Package cli parses the flags and environment shared by every host.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"trs80/pkg/logger"
)

// Config is the parsed command line.
type Config struct {
	Program     string        // optional .bas file to load
	StoragePath string        // host directory mirroring the cassette shelf
	Tape        string        // tape file INPUT#-1/PRINT#-1 start on
	LogLevel    string        // debug, info, warn or error
	Timeout     time.Duration // 0 means no limit
	Keys        string        // keystrokes fed to a batch run
	Scale       int           // desktop pixel scale
	Run         bool          // RUN after loading
	Seed        int64         // RND seed, 0 for time based
	OllamaURL   string
	Model       string
	Dump        bool // dump machine state on exit (console host)
	Screen      bool // raw full-screen terminal (console host)
	ShowHelp    bool
}

const (
	DefaultStorage = "trs80_vfs"
	DefaultTape    = "DEFAULT.DAT"
	DefaultScale   = 4
	DefaultModel   = "llama3"
)

// ParseArgs parses args (without the program name). Flags win over the
// TRS80_STORAGE, LOG_LEVEL, TIMEOUT and OLLAMA_URL environment variables.
func ParseArgs(name string, args []string) (*Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	config := &Config{}
	var timeoutSec int
	fs.StringVar(&config.StoragePath, "storage", "", "cassette directory")
	fs.StringVar(&config.Tape, "tape", DefaultTape, "tape file")
	fs.StringVar(&config.LogLevel, "log-level", "", "log level")
	fs.StringVar(&config.LogLevel, "l", "", "log level (short)")
	fs.IntVar(&timeoutSec, "timeout", 0, "timeout in seconds")
	fs.IntVar(&timeoutSec, "t", 0, "timeout in seconds (short)")
	fs.StringVar(&config.Keys, "keys", "", "keystrokes for batch runs")
	fs.IntVar(&config.Scale, "scale", DefaultScale, "pixel scale")
	fs.BoolVar(&config.Run, "run", false, "RUN after loading")
	fs.Int64Var(&config.Seed, "seed", 0, "RND seed")
	fs.StringVar(&config.OllamaURL, "ollama", "", "Ollama server URL")
	fs.StringVar(&config.Model, "model", DefaultModel, "assistant model")
	fs.BoolVar(&config.Dump, "dump", false, "dump machine state on exit")
	fs.BoolVar(&config.Screen, "screen", false, "full-screen terminal mode")
	fs.BoolVar(&config.ShowHelp, "help", false, "show help")
	fs.BoolVar(&config.ShowHelp, "h", false, "show help (short)")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return nil, err
	}

	if config.StoragePath == "" {
		config.StoragePath = envOr("TRS80_STORAGE", DefaultStorage)
	}
	if config.LogLevel == "" {
		config.LogLevel = strings.ToLower(envOr("LOG_LEVEL", "info"))
	}
	if timeoutSec == 0 {
		if env := os.Getenv("TIMEOUT"); env != "" {
			t, err := strconv.Atoi(env)
			if err != nil {
				return nil, fmt.Errorf("invalid TIMEOUT %q: %w", env, err)
			}
			timeoutSec = t
		}
	}
	if config.OllamaURL == "" {
		config.OllamaURL = os.Getenv("OLLAMA_URL")
	}

	if timeoutSec < 0 {
		return nil, fmt.Errorf("timeout must be non-negative, got %d", timeoutSec)
	}
	config.Timeout = time.Duration(timeoutSec) * time.Second

	if _, err := logger.ParseLevel(config.LogLevel); err != nil {
		return nil, fmt.Errorf("%w (must be debug, info, warn, or error)", err)
	}
	if config.Scale < 1 {
		return nil, fmt.Errorf("scale must be at least 1, got %d", config.Scale)
	}

	if fs.NArg() > 0 {
		config.Program = fs.Arg(0)
	}
	return config, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// boolFlags never consume the following argument.
var boolFlags = map[string]bool{"run": true, "dump": true, "screen": true, "help": true, "h": true}

// reorderArgs moves flags ahead of positional arguments so that
// "game.bas -run" parses the same as "-run game.bas".
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(arg) == 0 || arg[0] != '-' {
			positional = append(positional, arg)
			continue
		}
		flags = append(flags, arg)
		name := strings.TrimLeft(arg, "-")
		if strings.Contains(name, "=") || boolFlags[name] {
			continue
		}
		if i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	return append(flags, positional...)
}

// PrintHelp writes usage for the host called name.
func PrintHelp(w io.Writer, name string) {
	fmt.Fprintf(w, `%[1]s - TRS-80 Level II BASIC

Usage:
  %[1]s [options] [program.bas]

Options:
  -storage <dir>          cassette directory (default: %[2]s)
  -tape <name>            tape file for PRINT#-1 / INPUT#-1 (default: %[3]s)
  -l, -log-level <level>  debug, info, warn, error (default: info)
  -t, -timeout <seconds>  stop after this many seconds (default: no limit)
  -keys <text>            keystrokes to feed the program
  -scale <n>              pixel scale for the desktop window (default: %[4]d)
  -run                    RUN the program after loading it
  -seed <n>               seed for RND
  -ollama <url>           Ollama server for the assistant
  -model <name>           assistant model (default: %[5]s)
  -dump                   dump machine state on exit
  -screen                 full-screen terminal mode (console host)
  -h, -help               show this help

Environment Variables:
  TRS80_STORAGE=<dir>
  LOG_LEVEL=<level>
  TIMEOUT=<seconds>
  OLLAMA_URL=<url>
`, name, DefaultStorage, DefaultTape, DefaultScale, DefaultModel)
}
