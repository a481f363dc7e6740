// Command verifier is the terminal-side CLI: it reads a QR token image,
// redeems it against a running authority, and prints the disclosed
// attributes. It drives the same scan state machine as the hosted terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"attesta/internal/authority"
	"attesta/internal/disclosure"
	"attesta/internal/platform/logger"
	"attesta/internal/scan"
)

type verifierConfig struct {
	imagePath    string
	authorityURL string
	timeout      time.Duration
}

func parseFlags() verifierConfig {
	imagePath := flag.String("image", "", "path to the QR token image (png/jpeg/gif)")
	authorityURL := flag.String("authority", "http://localhost:8080", "base URL of the authority server")
	timeout := flag.Duration("timeout", 15*time.Second, "overall verification timeout")
	flag.Parse()

	return verifierConfig{
		imagePath:    *imagePath,
		authorityURL: *authorityURL,
		timeout:      *timeout,
	}
}

func main() {
	cfg := parseFlags()
	if cfg.imagePath == "" {
		fmt.Fprintln(os.Stderr, "usage: verifier -image <token.png> [-authority <url>]")
		os.Exit(2)
	}

	file, err := os.Open(cfg.imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open image: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	// Ctrl-C aborts an in-flight redemption instead of abandoning it.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, cfg.timeout)
	defer cancelTimeout()

	scanner := scan.NewScanner(authority.NewClient(cfg.authorityURL), logger.New())
	outcome, err := scanner.Submit(ctx, file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan refused: %v\n", err)
		os.Exit(1)
	}

	printOutcome(outcome)
	if outcome.State != scan.StateVerified {
		os.Exit(1)
	}
}

func printOutcome(outcome *scan.Outcome) {
	switch outcome.State {
	case scan.StateVerified:
		model := disclosure.Render(*outcome.Disclosure)
		fmt.Println("VERIFIED")
		if model.Title != "" {
			fmt.Printf("Purpose: %s\n", model.Title)
		}
		for _, field := range model.Fields {
			fmt.Printf("  %-16s %s\n", field.Label+":", field.Value)
		}
	case scan.StateInvalid:
		fmt.Println("INVALID")
		fmt.Println("The token was rejected: it may be expired, already used, or unknown.")
	default:
		fmt.Printf("FAILED (%s)\n", outcome.Reason)
	}
}
