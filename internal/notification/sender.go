package notification

import (
	"context"
	"os/exec"
	"time"
)

// sendTimeout bounds one openclaw invocation.
const sendTimeout = 10 * time.Second

// Sender delivers messages through the openclaw CLI.
// The zero value, or one without ChatID, is a no-op.
type Sender struct {
	Webhook string
	Channel string
	ChatID  string
}

// Enabled reports whether messages will be sent.
func (s *Sender) Enabled() bool {
	return s != nil && s.ChatID != ""
}

// Send delivers message. Silent on failure: a lost notification never
// interrupts the run.
func (s *Sender) Send(message string) {
	if !s.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "openclaw", "message", "send",
		"--webhook", s.Webhook,
		"--channel", s.Channel,
		"--chat-id", s.ChatID,
		"--message", message,
	)
	_ = cmd.Run()
}

// Notify formats e and sends it.
func (s *Sender) Notify(e Event) {
	s.Send(FormatEvent(e))
}
