package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/alkime/soundboard/internal/audio"
	"github.com/alkime/soundboard/internal/config"
	"github.com/alkime/soundboard/internal/engine"
	"github.com/alkime/soundboard/internal/invoke"
	"github.com/alkime/soundboard/internal/keyring"
	"github.com/alkime/soundboard/internal/logger"
	"github.com/alkime/soundboard/internal/server"
	"github.com/alkime/soundboard/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
)

// CLI defines the soundboard command structure.
type CLI struct {
	// Default TUI command (runs when no subcommand given)
	TUI TUICmd `cmd:"" default:"withargs" help:"Launch the terminal soundboard"`

	// Subcommands
	Serve   ServeCmd   `cmd:"" help:"Serve the engine and key recorder over HTTP"`
	Devices DevicesCmd `cmd:"" help:"List available playback devices"`
	Keys    KeysCmd    `cmd:"" help:"Inspect key task codes"`
	Config  ConfigCmd  `cmd:"" help:"Manage configuration"`
}

// TUICmd is the default command that runs the TUI.
type TUICmd struct {
	Files   []string `arg:"" optional:"" type:"existingfile" help:"Audio files to import"`
	LogFile string   `flag:"" optional:"" help:"Write logs to this file (logs are discarded otherwise)"`
}

// Run executes the TUI command.
func (c *TUICmd) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The TUI owns the terminal, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	log := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	eng, bus, err := startEngine(ctx, cfg, log)
	if err != nil {
		return err
	}
	client := engine.NewClient(bus)

	if err := importFiles(ctx, client, c.Files, log); err != nil {
		return err
	}
	log.Debug("engine ready", "soundbites", len(eng.Soundbites()))

	p := tea.NewProgram(tui.New(ctx, client, tui.Config{Cancel: cancel, Logger: log}))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to start TUI: %w", err)
	}

	return nil
}

// ServeCmd serves the HTTP API.
type ServeCmd struct {
	Import []string `flag:"" type:"existingfile" help:"Audio files to import at startup"`
}

// Run executes the serve command.
func (c *ServeCmd) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.SetupLogger(cfg)

	// Environment takes priority, fallback to keychain
	cfg.Token, err = keyring.Resolve(keyring.ServerToken, cfg.Token)
	if err != nil {
		log.Warn("keychain lookup failed", "key", keyring.ServerToken.DisplayName(), "error", err)
	}
	if cfg.Token == "" {
		log.Warn("API is unauthenticated; run 'soundboard config set-token' to require a token")
	}

	eng, bus, err := startEngine(ctx, cfg, log)
	if err != nil {
		return err
	}

	if err := importFiles(ctx, engine.NewClient(bus), c.Import, log); err != nil {
		return err
	}

	log.Info("Starting soundboard server",
		"env", cfg.Env,
		"port", cfg.Port,
		"static_dir", cfg.StaticDir,
		"soundbites", len(eng.Soundbites()),
	)

	srv := server.New(cfg, log, server.Deps{Bus: bus, Events: eng.Events()})
	if err := server.Run(srv); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

// DevicesCmd lists available playback devices.
type DevicesCmd struct{}

// Run executes the devices command.
func (dcmd *DevicesCmd) Run() error {
	slog.Info("Enumerating playback devices...")

	devices, err := audio.Malgo{}.PlaybackDevices(context.Background())
	if err != nil {
		return fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	for _, dev := range devices {
		slog.Info("Audio Device",
			"name", dev.Name,
			"isDefault", dev.IsDefault,
			"formatCount", dev.FormatCount,
			"formats", dev.Formats,
		)
	}

	if def, ok := audio.Default(devices); ok {
		slog.Info("Default playback device", "name", def.Name)
	}

	return nil
}

// KeysCmd groups key task subcommands.
type KeysCmd struct {
	Encode EncodeCmd `cmd:"" help:"Print the key task code for a key combination"`
}

// EncodeCmd encodes a chord the way the recorder does.
type EncodeCmd struct {
	Key      string `arg:"" help:"Primary key: a character or a key name such as F5 or ArrowUp"`
	Modifier string `flag:"" short:"m" help:"Modifier key: alt, control or shift"`
	Side     string `flag:"" short:"s" help:"Modifier side: left or right (unset encodes no modifier)"`
}

// Run executes the encode command.
func (c *EncodeCmd) Run() error {
	chord, err := encodeChord(c.Modifier, c.Side, c.Key)
	if err != nil {
		return err
	}

	fmt.Printf("%s = %s\n", chord.Label, chord.Code)

	return nil
}

// ConfigCmd groups configuration-related subcommands.
type ConfigCmd struct {
	SetToken   SetTokenCmd   `cmd:"" name:"set-token" help:"Store the API bearer token in system keychain"`
	ShowToken  ShowTokenCmd  `cmd:"" name:"show-token" help:"Show whether an API token is configured"`
	ClearToken ClearTokenCmd `cmd:"" name:"clear-token" help:"Remove the API token from system keychain"`
}

// SetTokenCmd stores the server token in the system keychain.
type SetTokenCmd struct {
	Token string `arg:"" help:"Bearer token value"`
}

// Run executes the set-token command.
func (c *SetTokenCmd) Run() error {
	if err := keyring.Set(keyring.ServerToken, strings.TrimSpace(c.Token)); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	fmt.Println("server token stored in keychain")

	return nil
}

// ShowTokenCmd shows whether the server token is configured.
type ShowTokenCmd struct {
	Reveal bool `flag:"" help:"Print the token itself"`
}

// Run executes the show-token command.
func (c *ShowTokenCmd) Run() error {
	if !keyring.IsSet(keyring.ServerToken) {
		fmt.Println("server token: not set")
		fmt.Println("\nRun 'soundboard config set-token <token>' to configure.")

		return nil
	}

	if !c.Reveal {
		fmt.Println("server token: configured")
		return nil
	}

	token, err := keyring.Get(keyring.ServerToken)
	if err != nil {
		return err
	}
	fmt.Printf("server token: %s\n", token)

	return nil
}

// ClearTokenCmd removes the server token.
type ClearTokenCmd struct{}

// Run executes the clear-token command.
func (c *ClearTokenCmd) Run() error {
	if err := keyring.Delete(keyring.ServerToken); err != nil {
		return err
	}

	fmt.Println("server token removed")

	return nil
}

// startEngine builds the engine and registers its commands on a fresh bus.
func startEngine(ctx context.Context, cfg *config.Config, log *slog.Logger) (*engine.Engine, *invoke.Bus, error) {
	eng, err := engine.New(ctx, engine.Options{
		DefaultVolume: cfg.DefaultVolume,
		DefaultSpeed:  cfg.DefaultSpeed,
		Logger:        log,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start engine: %w", err)
	}

	bus := invoke.NewBus(log)
	eng.Register(bus)

	return eng, bus, nil
}

func main() {
	// Set up text-based logger for CLI output
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))

	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	ctx := kong.Parse(cli,
		kong.Name("soundboard"),
		kong.Description("Play soundbites and bind them to key combinations."),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
	os.Exit(0)
}
