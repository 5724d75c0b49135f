package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Oracle/models"
)

// Notifier announces active-sphere promotions and regime flips to a Telegram
// chat. It is optional plumbing; the engine works without it.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger

	lastSphere string
	lastRegime models.MarketState
	seeded     bool
}

// New connects the bot. An empty token disables notification entirely.
func New(token string, chatID int64) (*Notifier, error) {
	if token == "" || token == "-" {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}
	return &Notifier{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "notifier").Logger(),
	}, nil
}

// Observe compares the latest trinity view against the previous one and sends
// a message when the active sphere or the consensus regime changed.
func (n *Notifier) Observe(trinity models.TrinityReport, regime models.RegimeReport) {
	if n == nil {
		return
	}

	if trinity.Active != nil && trinity.Active.SphereID != n.lastSphere {
		n.send(fmt.Sprintf(
			"Active sphere changed: %s\nSignal: %s (confidence %.2f)",
			trinity.Active.SphereID, trinity.Active.Signal, trinity.Active.Confidence,
		))
		n.lastSphere = trinity.Active.SphereID
	}

	if n.seeded && regime.CurrentState != n.lastRegime {
		n.send(fmt.Sprintf(
			"Regime flip: %s -> %s (persistence %.2f)",
			n.lastRegime, regime.CurrentState, regime.Persistence,
		))
	}
	n.lastRegime = regime.CurrentState
	n.seeded = true
}

func (n *Notifier) send(text string) {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Msg("failed to send telegram message")
	}
}
