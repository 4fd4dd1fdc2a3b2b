package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/soyeahso/agentwiz/internal/config"
)

const defaultCommandTimeout = 10 * time.Second

// CommandHandler runs a shell command for each event. The payload is written
// to the command's stdin as JSON and the event name and session id are
// exported as AGENTWIZ_EVENT and AGENTWIZ_SESSION.
func CommandHandler(entry config.HookEntry) Handler {
	timeout := defaultCommandTimeout
	if entry.Timeout > 0 {
		timeout = time.Duration(entry.Timeout) * time.Millisecond
	}

	return func(ctx context.Context, p Payload) error {
		body, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encoding hook payload: %w", err)
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, "sh", "-c", entry.Command)
		cmd.Stdin = bytes.NewReader(body)
		cmd.Env = append(os.Environ(),
			"AGENTWIZ_EVENT="+p.Event,
			"AGENTWIZ_SESSION="+p.Session,
		)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		cmd.WaitDelay = time.Second

		if err := cmd.Run(); err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return fmt.Errorf("hook %q timed out after %s", entry.Command, timeout)
			}
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return fmt.Errorf("hook %q: %w: %s", entry.Command, err, msg)
			}
			return fmt.Errorf("hook %q: %w", entry.Command, err)
		}
		return nil
	}
}

// RegisterCommands wires the shell hooks from config into the manager.
// It returns the number of handlers registered.
func RegisterCommands(m *Manager, cfg config.HooksConfig) int {
	groups := []struct {
		event   string
		entries []config.HookEntry
	}{
		{EventStepChanged, cfg.StepChanged},
		{EventDocumentAssembled, cfg.DocumentAssembled},
		{EventSessionCompleted, cfg.SessionCompleted},
	}

	n := 0
	for _, g := range groups {
		for i, entry := range g.entries {
			if entry.Command == "" {
				continue
			}
			m.On(g.event, fmt.Sprintf("config:%s[%d]", g.event, i), CommandHandler(entry))
			n++
		}
	}
	return n
}
