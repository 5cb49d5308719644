package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	tele "gopkg.in/telebot.v4"

	kit "announcebot/internal/transport"
	logx "announcebot/pkg/logx"
)

type Config struct {
	Token       string
	PollTimeout time.Duration
}

// Adapter bridges Telegram to the platform-neutral transport contract.
// Destination ids are decimal chat ids.
type Adapter struct {
	cfg Config
	log logx.Logger

	bot *tele.Bot

	runMu   sync.Mutex
	running bool
	runWG   sync.WaitGroup

	// droppedCommands counts commands dropped because the consumer was
	// slower than the poll loop. Logged on stop to avoid per-update spam.
	droppedCommands uint64
}

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	return &Adapter{cfg: cfg, log: log, bot: b}, nil
}

func (a *Adapter) Start(ctx context.Context, out chan<- kit.Command) error {
	a.runMu.Lock()
	if a.running {
		a.runMu.Unlock()
		return nil
	}
	a.running = true
	a.runMu.Unlock()

	a.bot.Handle(tele.OnText, func(c tele.Context) error {
		m := c.Message()
		if m == nil || !strings.HasPrefix(m.Text, "/") {
			return nil
		}
		cmd := kit.Command{
			Chat: strconv.FormatInt(m.Chat.ID, 10),
			Text: m.Text,
		}
		if m.Sender != nil {
			cmd.FromUsername = m.Sender.Username
		}
		select {
		case out <- cmd:
		default:
			atomic.AddUint64(&a.droppedCommands, 1)
		}
		return nil
	})

	a.runWG.Add(2)
	go func() {
		defer a.runWG.Done()
		<-ctx.Done()
		a.bot.Stop()
	}()
	go func() {
		defer a.runWG.Done()
		a.log.Info("polling started")
		a.bot.Start() // blocks until Stop()
		a.log.Info("polling stopped")
	}()

	return nil
}

func (a *Adapter) Stop(ctx context.Context) error {
	a.runMu.Lock()
	wasRunning := a.running
	a.running = false
	a.runMu.Unlock()
	if !wasRunning {
		return nil
	}

	if n := atomic.SwapUint64(&a.droppedCommands, 0); n > 0 {
		a.log.Warn("inbound commands dropped (channel full)", logx.Any("count", n))
	}

	go a.bot.Stop()

	done := make(chan struct{})
	go func() {
		a.runWG.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		// Never block shutdown on a pending long-poll.
		a.log.Warn("telegram stop timed out")
		return nil
	}
}

func (a *Adapter) SendText(ctx context.Context, to string, text string) error {
	chatID, err := strconv.ParseInt(strings.TrimSpace(to), 10, 64)
	if err != nil {
		return fmt.Errorf("bad destination id %q: %w", to, err)
	}
	_, err = a.bot.Send(tele.ChatID(chatID), text, &tele.SendOptions{DisableWebPagePreview: true})
	return err
}
