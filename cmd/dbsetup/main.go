// Command dbsetup concatenates migration "up" files into a single setup
// script used to bootstrap a database schema.
//
//	dbsetup [flags] [source-root]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/blockedby/dbsetup/internal/config"
	"github.com/blockedby/dbsetup/internal/logger"
	"github.com/blockedby/dbsetup/internal/setupscript"
)

// exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Environ(), os.Stdout, os.Stderr))
}

func run(args, environ []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dbsetup", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: dbsetup [flags] [source-root]")
		fs.PrintDefaults()
	}

	var (
		configFile = fs.String("config", "", "yaml config file")
		envFile    = fs.String("env-file", config.DefaultEnvFile, "dotenv file, ignored when missing")
		out        = fs.String("out", "", "setup script path (DB_SETUP_SCRIPT_PATH)")
		pattern    = fs.String("pattern", "", "file name pattern, matched from the start of the name (DB_FILE_REGEX)")
		logLevel   = fs.String("log-level", "", "log level (LOG_LEVEL)")
		list       = fs.Bool("list", false, "print matching migrations in order and exit without writing")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return exitUsage
	}

	// 1. Load config
	cfg, err := config.Load(config.Sources{
		ConfigFile: *configFile,
		EnvFile:    *envFile,
		Environ:    environ,
	})
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return exitError
	}
	cfg.Apply(config.Overrides{
		SourceRoot:      fs.Arg(0),
		OutputPath:      *out,
		FileNamePattern: *pattern,
		LogLevel:        *logLevel,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid config: %v\n", err)
		return exitError
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.LogLevel, cfg.LogFile, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "failed to init logger: %v\n", err)
		return exitError
	}
	defer log.Close()

	c := setupscript.NewConcatenator(log)

	// 3. Dry run
	if *list {
		files, err := c.Discover(cfg.Script())
		if err != nil {
			log.Error().Err(err).Msg("discovery failed")
			return exitError
		}
		if len(files) == 0 {
			log.Error().Str("root", cfg.SourceRoot).Msg("no migration files were found")
			return exitError
		}
		for _, path := range files {
			fmt.Fprintln(stdout, path)
		}
		return exitOK
	}

	// 4. Concatenate
	res, err := c.Concatenate(cfg.Script())
	switch {
	case errors.Is(err, setupscript.ErrNoMigrationsFound):
		log.Error().Str("root", cfg.SourceRoot).Str("pattern", cfg.FileNamePattern).Msg("no migration files were found")
		return exitError
	case err != nil:
		log.Error().Err(err).Msg("failed to build setup script")
		return exitError
	}

	log.Info().
		Str("output", cfg.OutputPath).
		Int("files", len(res.Files)).
		Int64("bytes", res.Bytes).
		Msg("setup script written")
	return exitOK
}
