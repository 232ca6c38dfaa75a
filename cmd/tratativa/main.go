package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hpungsan/tratativa/internal/config"
	"github.com/hpungsan/tratativa/internal/db"
	"github.com/hpungsan/tratativa/internal/logging"
	"github.com/hpungsan/tratativa/internal/mcp"
	"github.com/hpungsan/tratativa/internal/ops"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"questions": true, "show": true, "answer": true, "extract": true,
	"generate": true, "copy": true, "clear": true,
	"template": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
  tratativa: verification checklist helper

  Usage: tratativa <command> [options]
         tratativa serve        open the checklist in the browser
         tratativa --help

  MCP server mode requires piped input.`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(ops.Env{Config: config.DefaultConfig()})
		if err := app.Run(os.Args); err != nil {
			fatal("%v", err)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fatal("could not determine home directory: %v", err)
	}
	baseDir := filepath.Join(homeDir, config.DirName)

	cwd, _ := os.Getwd()
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fatal("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fatal("%v", err)
	}
	defer func() { _ = logger.Sync() }()

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("unknown tools in disabled_tools", zap.Strings("tools", unknown))
	}
	if unknown := mcp.ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		logger.Warn("unknown types in disabled_types", zap.Strings("types", unknown))
	}

	database, err := db.Init(baseDir)
	if err != nil {
		fatal("failed to initialize database: %v", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	env := ops.Env{DB: database, Config: cfg, Logger: logger}

	if isCLIMode() {
		app := newCLIApp(env)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			database.Close()
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'tratativa --help' for usage.\n")
		database.Close()
		os.Exit(1)
	}

	if err := mcp.Run(env, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		database.Close()
		os.Exit(1)
	}
}
