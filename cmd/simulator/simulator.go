package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SimulatorConfig holds the simulator configuration
type SimulatorConfig struct {
	ServerURL string
	Token     string
	DelayMs   int
}

// clientEvent mirrors the recognition events the browser sends.
type clientEvent struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Code    string `json:"code,omitempty"`
	Aborted bool   `json:"aborted,omitempty"`
}

// serverFrame mirrors the frames the server pushes back.
type serverFrame struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Action    json.RawMessage `json:"action,omitempty"`
	Persona   json.RawMessage `json:"persona,omitempty"`
	Listening *bool           `json:"listening,omitempty"`
	Code      string          `json:"code,omitempty"`
}

// Simulator drives one voice session the way a browser would: it opens the
// websocket, sends recognition events, and prints every server frame.
type Simulator struct {
	config *SimulatorConfig
	conn   *websocket.Conn
	log    *zap.Logger

	writeMu sync.Mutex

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSimulator creates a new voice session simulator
func NewSimulator(config *SimulatorConfig, log *zap.Logger) *Simulator {
	return &Simulator{
		config:   config,
		log:      log,
		stopChan: make(chan struct{}),
	}
}

// Connect opens the websocket session
func (s *Simulator) Connect() error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.config.Token)

	conn, _, err := websocket.DefaultDialer.Dial(s.config.ServerURL, header)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	s.conn = conn
	s.log.Info("Connected to assistant server", zap.String("url", s.config.ServerURL))

	// Start message reader
	s.wg.Add(1)
	go s.readFrames()

	return s.sendEvent(clientEvent{Type: "start"})
}

// Stop stops the simulator
func (s *Simulator) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	if s.conn != nil {
		s.conn.Close()
	}
	s.wg.Wait()
}

// RunScript replays utterances from a file, one per line. Blank lines and
// lines starting with # are skipped.
func (s *Simulator) RunScript(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()

	delay := time.Duration(s.config.DelayMs) * time.Millisecond

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		s.log.Info("Replaying utterance", zap.String("text", line))
		if err := s.sendEvent(clientEvent{Type: "final", Text: line}); err != nil {
			return err
		}

		select {
		case <-s.stopChan:
			return nil
		case <-time.After(delay):
		}
	}
	return scanner.Err()
}

// RunInteractive reads commands from stdin until quit
func (s *Simulator) RunInteractive() {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")
		var err error

		switch cmd {
		case "start":
			err = s.sendEvent(clientEvent{Type: "start"})
		case "stop":
			err = s.sendEvent(clientEvent{Type: "stop"})
		case "say":
			if rest == "" {
				fmt.Println("usage: say <text>")
				continue
			}
			err = s.sendEvent(clientEvent{Type: "final", Text: rest})
		case "interim":
			if rest == "" {
				fmt.Println("usage: interim <text>")
				continue
			}
			err = s.sendEvent(clientEvent{Type: "interim", Text: rest})
		case "end":
			err = s.sendEvent(clientEvent{Type: "end"})
		case "error":
			if rest == "" {
				fmt.Println("usage: error <code>")
				continue
			}
			err = s.sendEvent(clientEvent{Type: "error", Code: rest})
		case "quit", "exit":
			s.Stop()
			return
		default:
			fmt.Printf("unknown command: %s\n", cmd)
			continue
		}

		if err != nil {
			s.log.Error("Failed to send event", zap.Error(err))
			return
		}
	}
}

func (s *Simulator) sendEvent(ev clientEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// readFrames prints every server frame until the connection drops
func (s *Simulator) readFrames() {
	defer s.wg.Done()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.stopChan:
			default:
				s.log.Warn("Connection closed", zap.Error(err))
			}
			return
		}

		var frame serverFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.log.Warn("Malformed server frame", zap.ByteString("data", data))
			continue
		}

		switch frame.Type {
		case "greeting", "response":
			fmt.Printf("[%s] %s\n", frame.Type, frame.Text)
		case "transcript":
			fmt.Printf("[transcript] %s\n", frame.Text)
		case "action":
			fmt.Printf("[action] %s\n", string(frame.Action))
		case "persona":
			fmt.Printf("[persona] %s\n", string(frame.Persona))
		case "state":
			if frame.Listening != nil {
				fmt.Printf("[state] listening=%v\n", *frame.Listening)
			}
		case "restart":
			// The real browser reopens its recognizer here; acknowledge only.
			fmt.Println("[restart] recognizer restart requested")
		case "error":
			fmt.Printf("[error] %s\n", frame.Code)
		default:
			fmt.Printf("[%s] %s\n", frame.Type, string(data))
		}
	}
}
