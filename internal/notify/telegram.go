// Package notify pushes short admin notifications about imports and seeding
// runs to Telegram. The notifier is optional: a nil *Notifier is a no-op, so
// wiring can skip it when no token is configured.
package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"swim-engine/internal/models"
	"swim-engine/internal/seeding"
)

type Notifier struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
}

func New(token string, adminIDs map[int64]bool) (*Notifier, error) {
	b, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	b.Debug = false
	n := &Notifier{bot: b}
	for id := range adminIDs {
		n.chatIDs = append(n.chatIDs, id)
	}
	return n, nil
}

func (n *Notifier) send(text string) {
	if n == nil {
		return
	}
	for _, chatID := range n.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := n.bot.Send(msg); err != nil {
			log.Printf("notify %d: %v", chatID, err)
		}
	}
}

func (n *Notifier) ImportDone(competition *models.Competition, source string) {
	n.send(fmt.Sprintf("📥 Импорт %s: соревнование «%s» (%s) обновлено.",
		source, competition.Title, competition.Slug))
}

func (n *Notifier) SeedingDone(summary *seeding.Summary) {
	n.send(fmt.Sprintf("🏊 Жеребьёвка пересчитана: %d заплывов, %d дорожек (соревнование #%d).",
		summary.HeatsCreated, summary.LanesAssigned, summary.CompetitionID))
}
