// Package main is the entry point for the Edu AI Gateway.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/compresr/edu-ai-gateway/internal/config"
	"github.com/compresr/edu-ai-gateway/internal/gateway"
	"github.com/compresr/edu-ai-gateway/internal/monitoring"
	"github.com/compresr/edu-ai-gateway/internal/tokens"
)

// Version is set at build time via ldflags.
var Version = "v0.1.0"

const appName = "edu-ai-gateway"

// loadEnvFiles loads .env from standard locations
func loadEnvFiles() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		_ = godotenv.Load()
		return
	}

	// Try loading from ~/.config/edu-ai-gateway/.env first
	configEnv := filepath.Join(homeDir, ".config", appName, ".env")
	if _, err := os.Stat(configEnv); err == nil {
		_ = godotenv.Load(configEnv)
	}

	// Local .env fills anything still unset
	_ = godotenv.Load()
}

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "serve", "start":
			os.Exit(runGatewayServer(args[1:]))
		case "providers":
			os.Exit(runProviders(args[1:], os.Stdout))
		case "version", "-v", "--version":
			fmt.Printf("%s %s\n", appName, Version)
			return
		case "help", "-h", "--help":
			printHelp(os.Stdout)
			return
		}
	}

	// Default: serve with whatever flags were given
	os.Exit(runGatewayServer(args))
}

// resolveServeConfig resolves the config for the serve command.
// Checks: user flag -> filesystem locations -> embedded configs.
// Returns raw bytes and source description.
func resolveServeConfig(userConfig string) ([]byte, string, error) {
	if userConfig != "" {
		data, err := os.ReadFile(userConfig)
		if err != nil {
			return nil, "", fmt.Errorf("config file not found: %s", userConfig)
		}
		return data, userConfig, nil
	}

	var searchPaths []string
	if homeDir, _ := os.UserHomeDir(); homeDir != "" {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".config", appName, "config.yaml"))
	}
	searchPaths = append(searchPaths, "configs/config.yaml")

	for _, path := range searchPaths {
		if data, err := os.ReadFile(path); err == nil {
			return data, path, nil
		}
	}

	if data, err := getEmbeddedConfig(defaultConfigName); err == nil {
		return data, "(embedded) " + defaultConfigName + ".yaml", nil
	}

	return nil, "", fmt.Errorf("no config file found. Specify --config path")
}

// loadConfig loads .env files, then resolves and parses the configuration.
func loadConfig(userConfig string) (*config.Config, string, error) {
	loadEnvFiles()

	data, source, err := resolveServeConfig(userConfig)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadFromBytes(data)
	if err != nil {
		return nil, source, fmt.Errorf("%s: %w", source, err)
	}
	return cfg, source, nil
}

// runGatewayServer starts the gateway and blocks until it stops.
func runGatewayServer(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(args) // ExitOnError handles errors

	cfg, source, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	logger := setupLogging(cfg.Monitoring.LoggerConfig(), *debug)

	active := 0
	for _, p := range cfg.ProviderConfigs() {
		if p.Enabled() {
			active++
		}
	}

	logger.Info().
		Str("version", Version).
		Str("config", source).
		Str("environment", cfg.Environment).
		Int("port", cfg.Server.Port).
		Int("providers", len(cfg.Providers)).
		Int("active_providers", active).
		Bool("mock_allowed", cfg.MockAllowed()).
		Msg("Edu AI Gateway starting")

	gw, err := gateway.New(cfg, gateway.WithLogger(logger), gateway.WithEstimator(tokens.Get()))
	if err != nil {
		logger.Error().Err(err).Msg("failed to create gateway")
		return 1
	}

	errCh := make(chan error, 1)
	go func() { errCh <- gw.Start() }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errCh:
		_ = gw.Close()
		if err != nil {
			logger.Error().Err(err).Msg("gateway error")
			return 1
		}
		return 0
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := gw.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("gateway shutdown error")
		return 1
	}
	if err := <-errCh; err != nil {
		logger.Error().Err(err).Msg("gateway error")
		return 1
	}

	logger.Info().Msg("Edu AI Gateway stopped")
	return 0
}

// setupLogging installs the global logger. Console output is used when no
// format is configured and stdout is a terminal.
func setupLogging(cfg monitoring.LoggerConfig, debug bool) *monitoring.Logger {
	if cfg.Format == "" {
		cfg.Format = "json"
		if (cfg.Output == "" || cfg.Output == "stdout") && term.IsTerminal(int(os.Stdout.Fd())) {
			cfg.Format = "console"
		}
	}
	if debug {
		cfg.Level = "debug"
	}
	logger := monitoring.Global(cfg)
	log.Debug().Str("format", cfg.Format).Msg("logging configured")
	return logger
}

// runProviders prints the resolved provider table.
func runProviders(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("providers", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(args)

	cfg, source, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	writeProviderTable(out, cfg, source)
	return 0
}

func writeProviderTable(out io.Writer, cfg *config.Config, source string) {
	fmt.Fprintf(out, "config: %s\n", source)
	fmt.Fprintf(out, "environment: %s (mock allowed: %t)\n\n", cfg.Environment, cfg.MockAllowed())

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tNAME\tFAMILY\tMODEL\tKEYS\tENABLED")
	for i, p := range cfg.ProviderConfigs() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%t\n", i+1, p.Name, p.Family, p.Model, len(p.Keys), p.Enabled())
	}
	_ = tw.Flush()
}

// printHelp prints usage information
func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Edu AI Gateway - ordered fallback over AI providers for study tools")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  %s [command] [options]\n", appName)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  serve        Start the gateway server (default)")
	fmt.Fprintln(out, "  providers    Print the resolved provider order and key counts")
	fmt.Fprintln(out, "  version      Print version information")
	fmt.Fprintln(out, "  help         Show this help message")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Options:")
	fmt.Fprintln(out, "  --config FILE    Gateway config (default: embedded)")
	fmt.Fprintln(out, "  --debug          Enable debug logging (serve only)")
	fmt.Fprintln(out)
	if names, err := listEmbeddedConfigs(); err == nil {
		fmt.Fprintf(out, "Embedded configs: %v\n", names)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Keys are read from environment variables such as OPENROUTER_API_KEYS,")
	fmt.Fprintln(out, "GEMINI_API_KEYS and GROQ_API_KEYS (comma-separated), or their singular forms.")
}
