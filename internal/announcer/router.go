package announcer

import (
	"context"
	"strings"
	"time"

	kit "announcebot/internal/transport"
	logx "announcebot/pkg/logx"
)

const (
	ackSubscribed   = "Announcements will be sent in this channel!"
	ackUnsubscribed = "Announcements are now off for this channel."
	ackFailed       = "Could not update the channel list, try again later."

	replyTimeout = 5 * time.Second
)

// Router translates inbound chat commands into registry commands and
// sends acknowledgements back to the originating chat.
type Router struct {
	svc    *Service
	sender Sender
	log    logx.Logger
}

func NewRouter(svc *Service, sender Sender, log logx.Logger) *Router {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Router{svc: svc, sender: sender, log: log}
}

// Run consumes chat commands until in closes or ctx is cancelled.
func (r *Router) Run(ctx context.Context, in <-chan kit.Command) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-in:
			if !ok {
				return
			}
			r.handle(ctx, cmd)
		}
	}
}

func (r *Router) handle(ctx context.Context, cmd kit.Command) {
	verb, _, _ := strings.Cut(strings.TrimSpace(cmd.Text), " ")
	// Group chats suffix commands with the bot name (/announce@somebot).
	verb, _, _ = strings.Cut(verb, "@")

	var kind CommandKind
	switch verb {
	case "/announce":
		// Toggle for the originating chat.
		kind = Register
		if contains(r.svc.Snapshot(), cmd.Chat) {
			kind = Unregister
		}
	case "/subscribe":
		kind = Register
	case "/unsubscribe":
		kind = Unregister
	default:
		return
	}

	reply := make(chan []string, 1)
	if !r.svc.Enqueue(Command{Kind: kind, Dest: cmd.Chat, Reply: reply}) {
		return
	}

	ack := ackFailed
	select {
	case <-ctx.Done():
		return
	case <-time.After(replyTimeout):
		r.log.Warn("no acknowledgement from command loop", logx.String("chat", cmd.Chat))
	case seq := <-reply:
		if seq != nil {
			if kind == Register {
				ack = ackSubscribed
			} else {
				ack = ackUnsubscribed
			}
		}
	}

	if err := r.sender.SendText(ctx, cmd.Chat, ack); err != nil {
		r.log.Warn("acknowledgement send failed", logx.String("chat", cmd.Chat), logx.Err(err))
	}
}

func contains(seq []string, id string) bool {
	for _, s := range seq {
		if s == id {
			return true
		}
	}
	return false
}
