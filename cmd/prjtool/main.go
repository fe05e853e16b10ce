// Command prjtool inspects and edits Dark Omen battle project files.
//
// Usage:
//
//	prjtool [-config file] [-log-level level] <command> [flags] <args>
//
// Commands:
//
//	dump       decode a .PRJ file and print it as JSON
//	build      encode a JSON project back into a .PRJ file
//	edit       open a .PRJ file as JSON in an editor and save it back
//	restore    decompress a backup written by edit
//	heightmap  export a terrain heightmap as PNG or DDS
//	height     query the terrain height at a world position
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var errUsage = errors.New("usage")

// app holds the resolved configuration and the streams commands write to.
type app struct {
	cfg    Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	name    string
	summary string
	run     func(a *app, args []string) error
}

var commands = []command{
	{name: "dump", summary: "decode a .PRJ file and print it as JSON", run: (*app).dump},
	{name: "build", summary: "encode a JSON project back into a .PRJ file", run: (*app).build},
	{name: "edit", summary: "open a .PRJ file as JSON in an editor and save it back", run: (*app).edit},
	{name: "restore", summary: "decompress a backup written by edit", run: (*app).restore},
	{name: "heightmap", summary: "export a terrain heightmap as PNG or DDS", run: (*app).heightmap},
	{name: "height", summary: "query the terrain height at a world position", run: (*app).height},
}

func main() {
	configPath := flag.String("config", "", "config file (default $XDG_CONFIG_HOME/prjtool/prjtool.ini)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	flag.Usage = usage
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	path, explicit := *configPath, *configPath != ""
	if !explicit {
		path = defaultConfigPath()
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("could not load config")
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	a := &app{cfg: cfg, stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := a.run(flag.Arg(0), flag.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal().Err(err).Str("command", flag.Arg(0)).Msg("failed")
	}
}

func (a *app) run(name string, args []string) error {
	for _, c := range commands {
		if c.name == name {
			return c.run(a, args)
		}
	}

	usage()
	return fmt.Errorf("%w: unknown command %q", errUsage, name)
}

func usage() {
	out := flag.CommandLine.Output()
	_, _ = fmt.Fprintln(out, "Usage: prjtool [-config file] [-log-level level] <command> [flags] <args>")
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Commands:")
	for _, c := range commands {
		_, _ = fmt.Fprintf(out, "  %-10s %s\n", c.name, c.summary)
	}
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Global flags:")
	flag.PrintDefaults()
}

// newFlagSet returns a flag set for one command that reports errors instead
// of exiting.
func (a *app) newFlagSet(name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(a.stderr, "Usage: prjtool %s [flags] %s\n", name, args)
		fs.PrintDefaults()
	}

	return fs
}

// parseArgs parses flags and requires exactly n positional arguments.
func parseArgs(fs *flag.FlagSet, args []string, n int) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != n {
		fs.Usage()
		return fmt.Errorf("%w: %s expects %d argument(s), got %d", errUsage, fs.Name(), n, fs.NArg())
	}

	return nil
}
