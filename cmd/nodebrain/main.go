// cmd/nodebrain/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"nodebrain/internal/nbengine"
	"nodebrain/internal/nblog"
	"nodebrain/internal/nbstore"
	"nodebrain/internal/nbtransport"
)

const version = "0.1.0"

// Build variables, set during build with ldflags.
var (
	buildDate = time.Now().Format("2006-01-02")
	gitCommit = "unknown"
)

// commandAliases mirrors cmd/sentra's alias table.
var commandAliases = map[string]string{
	"r": "run",
	"l": "replay",
	"s": "serve",
	"v": "version",
	"h": "help",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		showVersion()
	case "run":
		runCommand(args[1:])
	case "replay":
		replayCommand(args[1:])
	case "serve":
		serveCommand(args[1:])
	default:
		suggestCommand(cmd)
	}
}

// runCommand builds a fixture and applies a sequence of name=literal
// assignments to it, React-ing and printing fired actions after each.
func runCommand(args []string) {
	if len(args) == 0 {
		log.Fatal("usage: nodebrain run <fixture> [name=literal ...]")
	}
	name := args[0]
	f, err := lookupFixture(name)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	fmt.Printf("fixture %s: %s\n", name, f.describe)

	logger := nblog.Default()
	e := nbengine.New(time.Now().UTC(), logger)
	terms, err := f.build(e)
	if err != nil {
		log.Fatalf("Error building fixture: %v", err)
	}

	for _, assignment := range args[1:] {
		termName, literal, ok := strings.Cut(assignment, "=")
		if !ok {
			log.Fatalf("malformed assignment %q, want name=literal", assignment)
		}
		term, ok := terms[termName]
		if !ok {
			log.Fatalf("fixture %s has no term %q", name, termName)
		}
		value, err := nbstore.ParseLiteral(e, literal)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		if err := e.AssignTerm(term, value); err != nil {
			log.Fatalf("Error asserting %s: %v", termName, err)
		}
		actions, stats, err := e.React()
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		logger.Cycle(stats.CellsEvaluated, stats.ActionsFired, stats.Elapsed)
		for _, a := range actions {
			fmt.Printf("  fired: %s\n", a.Command)
		}
	}
}

// replayCommand opens an assertion log and replays it against a fresh
// fixture engine, reporting how many rows were applied.
func replayCommand(args []string) {
	if len(args) != 3 {
		log.Fatal("usage: nodebrain replay <driver> <dsn> <fixture>")
	}
	driver, dsn, name := args[0], args[1], args[2]

	f, err := lookupFixture(name)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	e := nbengine.New(time.Now().UTC(), nblog.Default())
	if _, err := f.build(e); err != nil {
		log.Fatalf("Error building fixture: %v", err)
	}

	store, err := nbstore.Open(driver, dsn)
	if err != nil {
		log.Fatalf("Error opening store: %v", err)
	}
	defer store.Close()

	n, err := nbstore.Replay(context.Background(), store, e, e.Root())
	if err != nil {
		log.Fatalf("Error replaying log: %v", err)
	}
	fmt.Printf("replayed %d assertions\n", n)
}

// serveCommand replays any existing log, then blocks serving a
// WebSocket assertion stream until interrupted.
func serveCommand(args []string) {
	if len(args) != 4 {
		log.Fatal("usage: nodebrain serve <driver> <dsn> <addr> <fixture>")
	}
	driver, dsn, addr, name := args[0], args[1], args[2], args[3]

	f, err := lookupFixture(name)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	logger := nblog.Default()
	e := nbengine.New(time.Now().UTC(), logger)
	if _, err := f.build(e); err != nil {
		log.Fatalf("Error building fixture: %v", err)
	}

	store, err := nbstore.Open(driver, dsn)
	if err != nil {
		log.Fatalf("Error opening store: %v", err)
	}
	defer store.Close()

	if n, err := nbstore.Replay(context.Background(), store, e, e.Root()); err != nil {
		log.Fatalf("Error replaying log: %v", err)
	} else if n > 0 {
		fmt.Printf("replayed %d assertions from %s\n", n, dsn)
	}

	listener := nbtransport.NewListener(e, e.Root(), store)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("listening on %s (fixture %s)\n", addr, name)
	if err := listener.ListenAndServe(ctx, addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func showVersion() {
	fmt.Printf("nodebrain %s\n", version)
	fmt.Printf("build date: %s\n", buildDate)
	if gitCommit != "unknown" {
		fmt.Printf("git commit: %s\n", gitCommit)
	}
}

func showUsage() {
	fmt.Println("nodebrain - rule-driven event correlation engine")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  nodebrain run <fixture> [name=literal ...]   Build a fixture and assert values   (alias: r)")
	fmt.Println("  nodebrain replay <driver> <dsn> <fixture>    Replay a stored assertion log        (alias: l)")
	fmt.Println("  nodebrain serve <driver> <dsn> <addr> <fix>  Replay then serve a WebSocket feed   (alias: s)")
	fmt.Println("  nodebrain version                            Show version                         (alias: v)")
	fmt.Println("  nodebrain help                               Show this message                    (alias: h)")
	fmt.Println()
	fmt.Println("Fixtures:")
	for name, f := range fixtures {
		fmt.Printf("  %-12s %s\n", name, f.describe)
	}
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  nodebrain run andgate a=1 b=1")
	fmt.Println("  nodebrain serve sqlite assertions.db :8080 andgate")
}

// suggestCommand reports an unknown command and the closest known one,
// mirroring cmd/sentra/main.go's Levenshtein-distance suggestion.
func suggestCommand(cmd string) {
	known := []string{"run", "replay", "serve", "version", "help"}
	fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", cmd)

	best, bestDist := "", -1
	for _, k := range known {
		d := levenshtein(cmd, k)
		if bestDist < 0 || d < bestDist {
			best, bestDist = k, d
		}
	}
	if bestDist >= 0 && bestDist <= 3 {
		fmt.Fprintf(os.Stderr, "Did you mean %q?\n", best)
	}
	fmt.Fprintln(os.Stderr, "Run 'nodebrain help' to see all commands")
	os.Exit(1)
}

func levenshtein(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}
	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}
	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			del := matrix[i-1][j] + 1
			ins := matrix[i][j-1] + 1
			sub := matrix[i-1][j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			matrix[i][j] = m
		}
	}
	return matrix[len(s1)][len(s2)]
}
