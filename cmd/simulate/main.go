package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/laurencestokes/challenger-events-sub000/internal/simulate"
)

// Default configuration constants.
const (
	defaultNumUsers       = 500
	defaultSubmissionsPer = 10
	defaultTopN           = 50
	defaultWorkers        = 2 // multiplier for runtime.NumCPU()
	defaultTimeout        = 30 * time.Second
	defaultRunTimeout     = 10 * time.Minute
)

func main() {
	var (
		baseURL        = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numUsers       = flag.Int("users", defaultNumUsers, "Number of athlete profiles to seed")
		submissionsPer = flag.Int("submissions", defaultSubmissionsPer, "Score submissions per athlete")
		topN           = flag.Int("top", defaultTopN, "Number of top entries to fetch from leaderboard")
		workers        = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout        = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile        = flag.String("log", "", "Log file for run output (default: simulate_log_TIMESTAMP.log)")
		verbose        = flag.Bool("verbose", false, "Enable verbose logging")
		help           = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	// Setup logging
	if err := simulate.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	// Create run configuration
	config := &simulate.Config{
		BaseURL:        *baseURL,
		NumUsers:       *numUsers,
		SubmissionsPer: *submissionsPer,
		TopN:           *topN,
		Workers:        *workers,
		Timeout:        *timeout,
		LogFile:        *logFile,
		Verbose:        *verbose,
	}

	// Run the simulation
	if err := simulate.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
