package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dom/broadcast-overlay/internal/domain"
	"github.com/dom/broadcast-overlay/internal/reconciler"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	serverURL := "ws://localhost:8080/api/v1/ws"
	if envURL := os.Getenv("OVERLAY_WS_URL"); envURL != "" {
		serverURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "watch":
		watchCmd(serverURL)
	case "score":
		scoreCmd(serverURL, args)
	case "name":
		nameCmd(serverURL, args)
	case "burst":
		burstCmd(serverURL, args)
	case "reset":
		resetCmd(serverURL)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Overlay Operator - headless control client for the broadcast overlay

USAGE:
  operator <command> [options]

COMMANDS:
  watch     Connect and print every merged state broadcast
  score     Set a player's score
  name      Set a player's name
  burst     Fire a rapid burst of score edits to exercise debouncing
  reset     Reset the broadcast state to defaults
  help      Show this help message

ENVIRONMENT:
  OVERLAY_WS_URL   Server WebSocket URL (default: ws://localhost:8080/api/v1/ws)

EXAMPLES:
  # Watch broadcasts as another operator edits
  operator watch

  # Put player 1 at 3 points
  operator score --player=1 --value=3

  # Ten edits in 100ms collapse into a single outbound update
  operator burst --player=2 --count=10`)
}

func connect(serverURL string) (*reconciler.Conn, *reconciler.Reconciler) {
	conn, err := reconciler.Dial(serverURL)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	rec := reconciler.New(conn, reconciler.Config{
		DebounceWindow:    300 * time.Millisecond,
		SuppressionWindow: 500 * time.Millisecond,
	})

	return conn, rec
}

func watchCmd(serverURL string) {
	conn, rec := connect(serverURL)
	defer conn.Close()

	fmt.Println("Watching broadcasts (Ctrl-C to quit)...")
	conn.ReadLoop(rec, func(state *domain.BroadcastState) {
		out, _ := json.Marshal(state)
		fmt.Printf("%s\n", out)
	})
}

func scoreCmd(serverURL string, args []string) {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	player := fs.Int("player", 1, "Player number (1 or 2)")
	value := fs.Int("value", 0, "New score")
	fs.Parse(args)

	conn, rec := connect(serverURL)
	defer conn.Close()

	go conn.ReadLoop(rec, nil)

	// Scores are clamped non-negative by the editing client, not the server.
	score := *value
	if score < 0 {
		score = 0
	}

	editPlayer(rec, *player, func(p *domain.PlayerState) {
		p.Score = score
	})

	// Give the debounced send time to flush before disconnecting.
	time.Sleep(600 * time.Millisecond)
	fmt.Printf("Player %d score set to %d\n", *player, score)
}

func nameCmd(serverURL string, args []string) {
	fs := flag.NewFlagSet("name", flag.ExitOnError)
	player := fs.Int("player", 1, "Player number (1 or 2)")
	value := fs.String("value", "", "New name")
	fs.Parse(args)

	conn, rec := connect(serverURL)
	defer conn.Close()

	go conn.ReadLoop(rec, nil)

	editPlayer(rec, *player, func(p *domain.PlayerState) {
		p.Name = *value
	})

	time.Sleep(600 * time.Millisecond)
	fmt.Printf("Player %d name set to %q\n", *player, *value)
}

func burstCmd(serverURL string, args []string) {
	fs := flag.NewFlagSet("burst", flag.ExitOnError)
	player := fs.Int("player", 1, "Player number (1 or 2)")
	count := fs.Int("count", 10, "Number of rapid edits")
	fs.Parse(args)

	conn, rec := connect(serverURL)
	defer conn.Close()

	go conn.ReadLoop(rec, nil)

	for i := 1; i <= *count; i++ {
		editPlayer(rec, *player, func(p *domain.PlayerState) {
			p.Score = i
		})
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(600 * time.Millisecond)
	fmt.Printf("Fired %d edits; the server saw one update with score %d\n", *count, *count)
}

func resetCmd(serverURL string) {
	conn, _ := connect(serverURL)
	defer conn.Close()

	if err := conn.Reset(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("State reset to defaults")
}

func editPlayer(rec *reconciler.Reconciler, player int, edit func(*domain.PlayerState)) {
	state := rec.State()
	if player == 2 {
		p := state.Player2
		edit(&p)
		rec.EditPlayer2(p)
		return
	}
	p := state.Player1
	edit(&p)
	rec.EditPlayer1(p)
}
