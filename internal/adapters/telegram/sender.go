// Package telegram delivers notifications through a Telegram bot.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ahamitd/notifyai/internal/ports"
	"github.com/go-telegram/bot"
	"golang.org/x/time/rate"
)

// Namespace routes "telegram.<chat>" targets here. The action is a numeric
// chat id or a channel username.
const Namespace = "telegram"

var ErrNoToken = errors.New("telegram bot token is not configured")

type Sender struct {
	token     string
	serverURL string
	limiter   *rate.Limiter

	once   sync.Once
	client *bot.Bot
	err    error
}

var _ ports.ServiceCaller = (*Sender)(nil)

type Option func(*Sender)

// WithServerURL points the bot at a different Bot API server.
func WithServerURL(url string) Option {
	return func(s *Sender) {
		s.serverURL = url
	}
}

func New(token string, opts ...Option) *Sender {
	s := &Sender{
		token:   strings.TrimSpace(token),
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sender) Call(ctx context.Context, _ string, action string, data map[string]any) error {
	client, err := s.bot()
	if err != nil {
		return err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram send pacing: %w", err)
	}

	params := &bot.SendMessageParams{
		ChatID: chatID(action),
		Text:   messageText(data),
	}
	if _, err := client.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("send telegram message to %s: %w", action, err)
	}

	return nil
}

func (s *Sender) bot() (*bot.Bot, error) {
	s.once.Do(func() {
		if s.token == "" {
			s.err = ErrNoToken
			return
		}

		opts := []bot.Option{bot.WithSkipGetMe()}
		if s.serverURL != "" {
			opts = append(opts, bot.WithServerURL(s.serverURL))
		}
		s.client, s.err = bot.New(s.token, opts...)
		if s.err != nil {
			s.err = fmt.Errorf("init telegram bot: %w", s.err)
		}
	})

	return s.client, s.err
}

func chatID(action string) any {
	if id, err := strconv.ParseInt(action, 10, 64); err == nil {
		return id
	}
	if strings.HasPrefix(action, "@") {
		return action
	}
	return "@" + action
}

func messageText(data map[string]any) string {
	title, _ := data["title"].(string)
	message, _ := data["message"].(string)

	switch {
	case title == "":
		return message
	case message == "":
		return title
	default:
		return title + "\n" + message
	}
}
