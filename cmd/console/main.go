package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/inkwell-games/novel-engine/internal/config"
	"github.com/inkwell-games/novel-engine/internal/events"
	istorage "github.com/inkwell-games/novel-engine/internal/storage"
	"github.com/inkwell-games/novel-engine/pkg/content"
	"github.com/inkwell-games/novel-engine/pkg/engine"
	"github.com/inkwell-games/novel-engine/pkg/storage"
)

func main() {
	cfg := config.Load()

	// The TUI owns stdout, so logs go to a sidecar file.
	logFile, err := os.OpenFile("console.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logFile.Close() // Ignore error in defer
	}()
	log := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: cfg.LogLevel}))

	storyFile := cfg.Story
	if storyFile == "" {
		storyFile, err = pickStory(cfg.DataDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	index, err := content.LoadIndex(filepath.Join(cfg.DataDir, storyFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load story: %v\n", err)
		os.Exit(1)
	}

	store, relay, err := setupStore(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up storage: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = store.Close() // Ignore error in defer
	}()

	eng := engine.New(index, store, log, engine.WithAutosaveInterval(cfg.AutosaveInterval))
	defer func() {
		_ = eng.Close() // Ignore error in defer
	}()

	if relay != nil {
		relay.Attach(eng)
		defer relay.Detach()
	}

	p := tea.NewProgram(NewConsoleUI(eng, store, index),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// setupStore picks Redis when configured, in-memory otherwise. The relay is
// only available on Redis, where there is a broker to publish through.
func setupStore(cfg *config.Config, log *slog.Logger) (storage.Store, *events.Relay, error) {
	if cfg.RedisURL == "" {
		log.Info("Using in-memory storage; saves will not survive exit")
		return storage.NewMemoryStore(), nil, nil
	}

	rs := istorage.NewRedisStore(cfg.RedisURL, cfg.SaveNamespace, log)
	if err := rs.WaitForConnection(context.Background()); err != nil {
		return nil, nil, err
	}
	return rs, events.NewRelay(rs.Client(), log), nil
}

func pickStory(dataDir string) (string, error) {
	stories, err := content.ListStories(dataDir)
	if err != nil || len(stories) == 0 {
		return "", fmt.Errorf("no stories found in %s", dataDir)
	}

	var titles []string
	for title := range stories {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	fmt.Println("Available Stories:")
	for i, title := range titles {
		fmt.Printf("  %d - %s (%s)\n", i+1, title, stories[title])
	}
	fmt.Print("\nSelect a story by number: ")

	var choice int
	if _, err := fmt.Scanf("%d", &choice); err != nil || choice < 1 || choice > len(titles) {
		return "", fmt.Errorf("invalid selection")
	}

	return stories[titles[choice-1]], nil
}
