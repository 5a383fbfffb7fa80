// Command chat is a terminal version of the "Ask AI-Barney" widget. Each
// input line is one message; replies stream in as they arrive.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ebarney/aibarney/internal/config"
	"github.com/ebarney/aibarney/internal/guard"
	"github.com/ebarney/aibarney/internal/model/chat"
	"github.com/ebarney/aibarney/internal/model/persona"
	"github.com/ebarney/aibarney/internal/widget"
	"github.com/ebarney/aibarney/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = logger.Init("warn", "console")
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warnf("failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", err)
	}

	endpoint := flag.String("endpoint", cfg.Chat.Endpoint, "chat endpoint URL")
	nudgeFile := flag.String("nudge-file", cfg.Chat.NudgeFile, "where the first-visit flag is kept")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	if err := logger.Init(*logLevel, cfg.Log.Format); err != nil {
		logger.Fatal("failed to initialize logger", err)
	}
	defer logger.Sync()

	assistant := persona.Default()
	ui := newConsole(os.Stdout, assistant.Name)
	bus := widget.NewBus()

	w := widget.New(widget.Options{
		Endpoint:         *endpoint,
		MaxMessageLength: cfg.Chat.MaxMessageLength,
		Greeting:         assistant.Greeting,
		Bus:              bus,
		Nudge:            widget.NewFileNudgeStore(*nudgeFile),
		NudgeDelay:       cfg.Chat.NudgeDelay,
		OnChange:         ui.change,
		OnStatus:         ui.status,
		OnNudge:          ui.nudge,
	})
	defer w.Close()

	if err := run(ctx, w, bus, ui, os.Stdin); err != nil {
		logger.Fatal("chat failed", err)
	}
}

// run reads commands and messages until EOF, /quit or ctx is done.
func run(ctx context.Context, w *widget.Widget, bus *widget.Bus, ui *console, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	ui.printf("Type a message, /open, /info, /copy N or /quit.\n")

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-readErr
			}
			if quit := handleLine(ctx, w, bus, ui, line); quit {
				return nil
			}
		}
	}
}

func handleLine(ctx context.Context, w *widget.Widget, bus *widget.Bus, ui *console, line string) bool {
	switch cmd := strings.TrimSpace(line); {
	case cmd == "/quit":
		return true
	case cmd == "/open":
		bus.Publish(widget.SignalOpenChat)
		showTranscript(w, ui)
		return false
	case cmd == "/info":
		ui.printf("session %s, %d messages, %s\n", w.SessionID(), len(w.Messages()), w.Phase())
		return false
	case strings.HasPrefix(cmd, "/copy"):
		copyBlock(w, ui, strings.TrimSpace(strings.TrimPrefix(cmd, "/copy")))
		return false
	}

	if !w.IsOpen() {
		w.Toggle()
		showTranscript(w, ui)
	}

	w.SetInput(line)
	if msg := w.InputError(); msg != "" {
		ui.printf("! %s\n", msg)
		return false
	}
	if g := w.Guard(); g.NearLimit(line) {
		ui.printf("(%d/%d)\n", g.Length(line), g.Max())
	}
	if !w.CanSend() {
		return false
	}

	if err := w.Submit(ctx); err != nil {
		var verr *guard.ValidationError
		if errors.As(err, &verr) {
			ui.printf("! %s\n", verr.Error())
		}
		logger.Infow("[chat] turn ended with error", "error", err)
	}
	return false
}

// showTranscript prints everything that happened before the panel opened.
func showTranscript(w *widget.Widget, ui *console) {
	for _, msg := range w.Messages() {
		ui.message(msg)
	}
}

// copyBlock prints code block n of the latest assistant reply without decoration.
func copyBlock(w *widget.Widget, ui *console, arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		ui.printf("! usage: /copy N\n")
		return
	}

	messages := w.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != chat.RoleAssistant {
			continue
		}
		blocks := ui.renderer.CodeBlocks(messages[i].Content)
		if n > len(blocks) {
			break
		}
		ui.printf("%s\n", blocks[n-1].Code)
		return
	}
	ui.printf("! no code block %d\n", n)
}
