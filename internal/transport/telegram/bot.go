package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/lisbot/internal/config"
	"github.com/sandevgo/lisbot/internal/service/chat"
	"github.com/sandevgo/lisbot/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

type Bot struct {
	bot     *tele.Bot
	cfg     *config.TelegramConfig
	chat    *chat.Service
	sender  *sender
	ownerID int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	chatSvc *chat.Service,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:     b,
		cfg:     cfg,
		chat:    chatSvc,
		sender:  newSender(b),
		ownerID: cfg.OwnerID,
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Middleware: Only allow the owner
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender().ID != bot.ownerID {
				return nil // Ignore unauthorized users
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)
	b.Handle("/forget", bot.handleForget)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)
	userID := fmt.Sprintf("telegram-%d", c.Chat().ID)

	// Notify user we are working
	_ = c.Notify(tele.Typing)

	reply, err := b.chat.Turn(ctx, userID, c.Text())
	if err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("chat turn failed")
		return c.Send(fmt.Sprintf("error: %v", err))
	}

	return b.sender.sendMarkdown(ctx, c.Chat(), reply.Text, reply.Glitch)
}

// handleForget wipes the memory record for this chat.
func (b *Bot) handleForget(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	userID := fmt.Sprintf("telegram-%d", c.Chat().ID)

	existed, err := b.chat.ClearMemory(ctx, userID)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("user_id", userID).Msg("clear memory failed")
		return c.Send(fmt.Sprintf("error: %v", err))
	}
	if !existed {
		return c.Send("Nothing to forget.")
	}
	return c.Send("Memory wiped.")
}
