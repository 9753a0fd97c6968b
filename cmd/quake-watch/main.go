package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"

	"github.com/mr1hm/go-quake-dashboard/internal/config"
	"github.com/mr1hm/go-quake-dashboard/internal/ingestion"
	"github.com/mr1hm/go-quake-dashboard/internal/logging"
	"github.com/mr1hm/go-quake-dashboard/internal/observability"
	"github.com/mr1hm/go-quake-dashboard/internal/pipeline"
	"github.com/mr1hm/go-quake-dashboard/internal/present"
	"github.com/mr1hm/go-quake-dashboard/internal/refresh"
)

// ANSI clear screen and cursor home, so each view replaces the last.
const clearScreen = "\033[H\033[2J"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	// stdout belongs to the dashboard.
	logger := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	client := ingestion.NewClient(cfg.Feed.URL, cfg.Feed.Timeout, cfg.Feed.RateLimit, logger)
	p := pipeline.New(client, cfg.Controls, clockwork.NewRealClock(), observability.NewMetrics(), logger)

	render := func(v present.View) {
		fmt.Print(clearScreen)
		if err := present.WriteText(os.Stdout, v); err != nil {
			slog.Error("render failed", "error", err)
		}
		fmt.Print("\n> ")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	loop := refresh.NewLoop(p, render, 1)
	loop.Start(ctx)

	controls := p.Defaults()
	loop.Submit(controls)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			loop.Stop()
			return
		case line, ok := <-lines:
			if !ok {
				loop.Stop()
				return
			}

			next, action, err := refresh.ParseCommand(line, controls)
			if err != nil {
				if errors.Is(err, refresh.ErrUnknownCommand) {
					fmt.Println(refresh.HelpText)
				}
				fmt.Printf("%v\n> ", err)
				continue
			}

			switch action {
			case refresh.ActionQuit:
				cancel()
				loop.Stop()
				return
			case refresh.ActionHelp:
				fmt.Printf("%s\n> ", refresh.HelpText)
			case refresh.ActionRefresh:
				controls = next
				if !loop.Submit(controls) {
					loop.Stop()
					return
				}
			default:
				fmt.Print("> ")
			}
		}
	}
}
