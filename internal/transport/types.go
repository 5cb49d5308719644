// Package transport defines the platform-neutral chat boundary: inbound
// chat commands flow out of an Adapter, announcement payloads flow back
// in through it.
package transport

import "context"

// Command is an inbound chat command addressed to the bot, already
// stripped of platform details. Chat is the opaque destination id the
// registry stores (for Telegram: the decimal chat id).
type Command struct {
	Chat         string
	FromUsername string
	Text         string
}

type Adapter interface {
	// Start begins consuming platform updates, translating bot commands
	// into Command values on out. It returns once consumption is running.
	Start(ctx context.Context, out chan<- Command) error
	Stop(ctx context.Context) error

	// SendText delivers text to the destination id.
	SendText(ctx context.Context, to string, text string) error
}
