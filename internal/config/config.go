// Package config reads settings from flags, the environment and a .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults.
const (
	DefaultAPIURL     = "http://localhost:8000"
	DefaultAddr       = ":3000"
	DefaultDBPath     = "aquagest.sqlite3"
	DefaultLoginRate  = 1.0
	DefaultLoginBurst = 5
)

// Config holds the settings of one aquagest invocation.
type Config struct {
	APIURL     string
	Addr       string
	DBPath     string
	LogPath    string
	Debug      bool
	LoginRate  float64
	LoginBurst int
	TrustProxy bool

	// Args are the positional arguments left after the flags.
	Args []string
}

// LoadDotEnv loads variables from path into the environment. Variables that
// are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// Load parses args for the named command. Each flag defaults to its
// environment variable, looked up with getenv, and then to the built-in
// default. Help output goes to out; flag.ErrHelp is returned for -h.
func Load(name string, args []string, getenv func(string) string, out io.Writer) (*Config, error) {
	env := envDefaults{getenv: getenv}
	cfg := &Config{}

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(out)

	apiURL := env.str("AQUAGEST_API_URL", DefaultAPIURL)
	flags.StringVar(&cfg.APIURL, "api", apiURL, "")

	addr := env.str("AQUAGEST_ADDR", DefaultAddr)
	flags.StringVar(&cfg.Addr, "addr", addr, "")
	flags.StringVar(&cfg.Addr, "a", addr, "")

	dbPath := env.str("AQUAGEST_DB", DefaultDBPath)
	flags.StringVar(&cfg.DBPath, "db", dbPath, "")
	flags.StringVar(&cfg.DBPath, "d", dbPath, "")

	logPath := env.str("AQUAGEST_LOG", "")
	flags.StringVar(&cfg.LogPath, "log", logPath, "")
	flags.StringVar(&cfg.LogPath, "l", logPath, "")

	flags.BoolVar(&cfg.Debug, "debug", env.bool("AQUAGEST_DEBUG", false), "")
	flags.Float64Var(&cfg.LoginRate, "login-rate", env.float("AQUAGEST_LOGIN_RATE", DefaultLoginRate), "")
	flags.IntVar(&cfg.LoginBurst, "login-burst", env.int("AQUAGEST_LOGIN_BURST", DefaultLoginBurst), "")
	flags.BoolVar(&cfg.TrustProxy, "trust-proxy", env.bool("AQUAGEST_TRUST_PROXY", false), "")

	flags.Usage = func() {
		fmt.Fprintf(out, `Usage: aquagest %s [flags]

Flags:
  -api <url>              backend origin (env AQUAGEST_API_URL, default: %s)
  -a, -addr <host:port>   listen address (env AQUAGEST_ADDR, default: %s)
  -d, -db <path>          SQLite database path (env AQUAGEST_DB, default: %s)
  -l, -log <path>         log file path (env AQUAGEST_LOG, default: stdout/stderr only)
  -debug                  log every backend call (env AQUAGEST_DEBUG)
  -login-rate <n>         login attempts per second per IP (env AQUAGEST_LOGIN_RATE, default: 1)
  -login-burst <n>        login attempts allowed at once (env AQUAGEST_LOGIN_BURST, default: 5)
  -trust-proxy            take the client IP from X-Forwarded-For (env AQUAGEST_TRUST_PROXY)
  -h, -help               show this help and exit
`, name, DefaultAPIURL, DefaultAddr, DefaultDBPath)
	}

	if env.err != nil {
		return nil, env.err
	}
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if cfg.APIURL == "" {
		return nil, errors.New("backend URL must not be empty")
	}
	if cfg.LoginRate <= 0 || cfg.LoginBurst <= 0 {
		return nil, errors.New("login rate and burst must be positive")
	}
	cfg.Args = flags.Args()
	return cfg, nil
}

// envDefaults reads typed defaults from the environment, keeping the first
// parse error.
type envDefaults struct {
	getenv func(string) string
	err    error
}

func (e *envDefaults) str(key, def string) string {
	if v := e.getenv(key); v != "" {
		return v
	}
	return def
}

func (e *envDefaults) bool(key string, def bool) bool {
	v := e.getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v)
		return def
	}
	return b
}

func (e *envDefaults) float(key string, def float64) float64 {
	v := e.getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v)
		return def
	}
	return f
}

func (e *envDefaults) int(key string, def int) int {
	v := e.getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v)
		return def
	}
	return n
}

func (e *envDefaults) fail(key, value string) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s value %q", key, value)
	}
}
