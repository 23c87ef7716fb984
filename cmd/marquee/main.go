package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/config"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/log"
	"github.com/mmcdole/marquee/internal/search"
	"github.com/mmcdole/marquee/internal/session"
	"github.com/mmcdole/marquee/internal/store"
	"github.com/mmcdole/marquee/internal/tmdb"
	"github.com/mmcdole/marquee/internal/tui"
	"github.com/mmcdole/marquee/internal/wishlist"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("marquee %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting marquee", "version", Version)

	if !cfg.IsConfigured() {
		if err := runSetupFlow(cfg); err != nil {
			return err
		}
	}

	kv, err := store.NewKVStore(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	defer kv.Close()

	client := tmdb.NewClient(cfg.TMDB.APIKey, logger,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithLanguage(cfg.TMDB.Language),
	)

	wishlistSvc := wishlist.NewService(kv, logger)
	sessionSvc := session.NewService(kv, wishlistSvc, logger)

	ctx := context.Background()
	user, err := sessionSvc.Resume(ctx)
	if err != nil {
		logger.Error("failed to resume session", "error", err)
	}
	if user == nil {
		u, err := runLoginFlow()
		if err != nil {
			return err
		}
		if err := sessionSvc.Login(ctx, u); err != nil {
			return fmt.Errorf("failed to sign in: %w", err)
		}
	}

	observer := tui.NewChannelObserver()
	aggregator := search.NewAggregator(client, observer, logger,
		search.WithDebounce(time.Duration(cfg.Search.DebounceMs)*time.Millisecond),
	)
	defer aggregator.Close()

	catalogSvc := catalog.NewService(client, kv, logger)

	model := tui.NewModel(aggregator, wishlistSvc, catalogSvc, client, sessionSvc, observer, logger)

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	// Flush the wishlist for the signed-in user before exiting
	if u := sessionSvc.Current(); u != nil {
		wishlistSvc.Save(ctx, u.ID)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow prompts for the TMDB API key on first run
func runSetupFlow(cfg *config.Config) error {
	fmt.Println()
	fmt.Println("Welcome to Marquee!")
	fmt.Println()
	fmt.Println("A TMDB API key is required (https://www.themoviedb.org/settings/api).")
	fmt.Print("Enter your API key: ")

	// Read without echo; the key is a credential
	keyBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read API key: %w", err)
	}

	apiKey := strings.TrimSpace(string(keyBytes))
	if apiKey == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	cfg.TMDB.APIKey = apiKey
	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println("✓ Configuration saved")
	fmt.Println()
	return nil
}

// runLoginFlow prompts for a local profile name. The wishlist is keyed
// per profile, so switching profiles switches wishlists.
func runLoginFlow() (domain.User, error) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("Profile name: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return domain.User{}, fmt.Errorf("failed to read input: %w", err)
		}
		name := strings.TrimSpace(input)
		if name == "" {
			fmt.Println("Profile name cannot be empty. Please try again.")
			continue
		}
		return domain.User{
			ID:       strings.ToLower(name),
			Username: name,
		}, nil
	}
}
