// Command broadcast renders a spoken broadcast message to an 8 kHz WAV file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/book-expert/broadcast-service/internal/broadcast"
	"github.com/book-expert/broadcast-service/internal/clip"
	"github.com/book-expert/broadcast-service/internal/config"
	"github.com/book-expert/broadcast-service/internal/core"
	"github.com/book-expert/logger"
	"github.com/joho/godotenv"
)

// Flag names.
const (
	flagEncoding     = "encoding"
	flagDisableCache = "disable-cache"
	flagNoRandom     = "no-random"
	flagOutput       = "output"
	flagPreamble     = "preamble"
	flagScript       = "script"
	flagBackend      = "backend"
	flagSeed         = "seed"
	flagVoice        = "voice"
	flagConfig       = "config"
)

// Flag descriptions.
const (
	flagEncodingDesc     = "Message encoding: none, words, ascii or phonetic"
	flagDisableCacheDesc = "Do not read or write the durable audio cache"
	flagNoRandomDesc     = "Use the fallback voice instead of random voices"
	flagOutputDesc       = "Output file path (.wav), defaults to the configured output path"
	flagPreambleDesc     = "Text spoken before the message"
	flagScriptDesc       = "JSON clip script to render instead of a message"
	flagBackendDesc      = "Synthesis backend: google or espeak (defaults to configuration)"
	flagSeedDesc         = "Seed for random voice selection (0 uses the configured seed)"
	flagVoiceDesc        = "Voice A-J for clips without a voice of their own"
	flagConfigDesc       = "Path to project.toml (defaults to ./project.toml, then the configurator search)"
)

// Error and log messages.
const (
	errEitherMessageOrScript = "either a message or --script must be provided"
	errCannotSpecifyBoth     = "cannot specify both a message and --script"
	errFmtReadScript         = "failed to read script %s: %w"
	logConfigFallback        = "Using default configuration: %v"
	logRendering             = "Rendering %d clips to %s"
	logGenerated             = "Generated: %s\n"
)

// File names.
const (
	logFileName          = "broadcast.log"
	bootstrapLogFileName = "broadcast-bootstrap.log"
	projectFile          = "project.toml"
)

var (
	errMissingInput = errors.New(errEitherMessageOrScript)
	errBothInputs   = errors.New(errCannotSpecifyBoth)
)

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	message      string
	encoding     string
	output       string
	preamble     string
	script       string
	backend      string
	voice        string
	config       string
	seed         uint64
	disableCache bool
	noRandom     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, os.Args[1:], os.Stdout)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application entry point, returning an error on failure.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	flags, err := parseFlags(args)
	if err != nil {
		return err
	}

	clips, err := buildClips(flags)
	if err != nil {
		return err
	}

	bootstrapLog, err := logger.New(os.TempDir(), bootstrapLogFileName)
	if err != nil {
		return fmt.Errorf("failed to create bootstrap logger: %w", err)
	}
	defer bootstrapLog.Close()

	cfg, err := loadConfig(flags, bootstrapLog)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Paths.BaseLogsDir, logFileName)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Close()

	synth, err := broadcast.NewSynthesizer(cfg, nil)
	if err != nil {
		return err
	}

	store, err := broadcast.NewCacheStore(cfg, nil)
	if err != nil {
		return err
	}

	service, err := broadcast.NewService(cfg, synth, store, log)
	if err != nil {
		return err
	}

	log.Info(logRendering, len(clips), cfg.Output.Path)

	err = service.RenderToFile(ctx, clips, cfg.Output.Path, renderOptions(flags))
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, logGenerated, cfg.Output.Path)

	return nil
}

// parseFlags defines and parses command-line flags; remaining arguments form the message.
func parseFlags(args []string) (appFlags, error) {
	var flags appFlags

	flagSet := flag.NewFlagSet("broadcast", flag.ContinueOnError)
	flagSet.StringVar(&flags.encoding, flagEncoding, clip.EncodingNone.String(), flagEncodingDesc)
	flagSet.BoolVar(&flags.disableCache, flagDisableCache, false, flagDisableCacheDesc)
	flagSet.BoolVar(&flags.noRandom, flagNoRandom, false, flagNoRandomDesc)
	flagSet.StringVar(&flags.output, flagOutput, "", flagOutputDesc)
	flagSet.StringVar(&flags.preamble, flagPreamble, clip.DefaultPreamble, flagPreambleDesc)
	flagSet.StringVar(&flags.script, flagScript, "", flagScriptDesc)
	flagSet.StringVar(&flags.backend, flagBackend, "", flagBackendDesc)
	flagSet.Uint64Var(&flags.seed, flagSeed, 0, flagSeedDesc)
	flagSet.StringVar(&flags.voice, flagVoice, "", flagVoiceDesc)
	flagSet.StringVar(&flags.config, flagConfig, "", flagConfigDesc)

	err := flagSet.Parse(args)
	if err != nil {
		return appFlags{}, fmt.Errorf("failed to parse flags: %w", err)
	}

	flags.message = strings.Join(flagSet.Args(), " ")

	return flags, nil
}

// buildClips validates the message and script inputs and returns the clips to render.
func buildClips(flags appFlags) ([]clip.Clip, error) {
	hasMessage := strings.TrimSpace(flags.message) != ""

	if !hasMessage && flags.script == "" {
		return nil, errMissingInput
	}

	if hasMessage && flags.script != "" {
		return nil, errBothInputs
	}

	if flags.script != "" {
		data, err := os.ReadFile(flags.script)
		if err != nil {
			return nil, fmt.Errorf(errFmtReadScript, flags.script, err)
		}

		return clip.ParseScript(data)
	}

	encoding, err := clip.ParseEncoding(flags.encoding)
	if err != nil {
		return nil, err
	}

	return clip.Broadcast(flags.preamble, flags.message, encoding), nil
}

// loadConfig reads the configuration and applies command-line overrides.
// Defaults are used only when no configuration source exists; a configuration
// that exists but does not parse or validate is an error.
func loadConfig(flags appFlags, log *logger.Logger) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)

	switch {
	case flags.config != "":
		cfg, err = config.LoadFile(flags.config)
	case fileExists(projectFile):
		cfg, err = config.LoadFile(projectFile)
	default:
		cfg, err = config.Load(log)
		if errors.Is(err, config.ErrSourceUnavailable) {
			log.Warn(logConfigFallback, err)

			cfg, err = config.Default(), nil
		}
	}

	if err != nil {
		return nil, err
	}

	if flags.backend != "" {
		cfg.Synthesis.Backend = flags.backend
	}

	if flags.output != "" {
		cfg.Output.Path = flags.output
	}

	if flags.voice != "" {
		cfg.Synthesis.DefaultVoice = flags.voice
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

func renderOptions(flags appFlags) core.RenderOptions {
	return core.RenderOptions{
		Seed:              flags.seed,
		DisableCache:      flags.disableCache,
		DisableRandomness: flags.noRandom,
	}
}
