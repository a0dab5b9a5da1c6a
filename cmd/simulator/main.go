package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

var (
	serverURL = flag.String("server", "ws://localhost:8080/ws/assistant", "Assistant WebSocket URL")
	token     = flag.String("token", "", "Access token for the session")
	script    = flag.String("script", "", "Path to a script file of utterances to replay")
	delayMs   = flag.Int("delay", 1500, "Delay between scripted utterances (ms)")
	interactive = flag.Bool("interactive", false, "Enable interactive mode")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	// Setup logger
	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *token == "" {
		fmt.Fprintln(os.Stderr, "A -token is required (log in via /api/v1/auth/login first)")
		os.Exit(1)
	}

	config := &SimulatorConfig{
		ServerURL: *serverURL,
		Token:     *token,
		DelayMs:   *delayMs,
	}

	simulator := NewSimulator(config, logger)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down simulator...")
		simulator.Stop()
		os.Exit(0)
	}()

	if err := simulator.Connect(); err != nil {
		logger.Fatal("Failed to connect to server", zap.Error(err))
	}

	switch {
	case *script != "":
		if err := simulator.RunScript(*script); err != nil {
			logger.Fatal("Script replay failed", zap.Error(err))
		}
		simulator.Stop()
	case *interactive:
		runInteractiveMode(simulator)
	default:
		fmt.Println("Voice session simulator connected")
		fmt.Printf("  Server: %s\n", *serverURL)
		fmt.Println("\nPress Ctrl+C to stop")
		select {}
	}
}

func runInteractiveMode(sim *Simulator) {
	fmt.Println("\nVoice Session Simulator - Interactive Mode")
	fmt.Println("==========================================")
	fmt.Println("Commands:")
	fmt.Println("  start                   - Start recognition")
	fmt.Println("  stop                    - Stop recognition")
	fmt.Println("  say <text>              - Send a final recognition result")
	fmt.Println("  interim <text>          - Send an interim recognition result")
	fmt.Println("  end                     - Signal that the recognizer ended")
	fmt.Println("  error <code>            - Simulate a recognizer error")
	fmt.Println("  quit                    - Exit simulator")
	fmt.Println("")

	sim.RunInteractive()
}
