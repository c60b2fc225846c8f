// Package reminders pushes the next word to the learner at fixed hours.
package reminders

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/smith3v/word-learner/pkg/config"
	"github.com/smith3v/word-learner/pkg/logger"
)

// Sender delivers the next word card to a chat.
type Sender interface {
	SendNextWord(ctx context.Context, b *bot.Bot, chatID int64)
}

type Scheduler struct {
	sender Sender
	chatID int64
	hours  []int
	offset time.Duration

	mu       sync.Mutex
	lastSent time.Time
}

// New returns nil when no reminder hours are configured.
func New(sender Sender, cfg config.TelegramConfig) *Scheduler {
	if len(cfg.ReminderHours) == 0 || cfg.AllowedUserID == 0 {
		return nil
	}
	hours := append([]int(nil), cfg.ReminderHours...)
	sort.Ints(hours)
	return &Scheduler{
		sender: sender,
		chatID: cfg.AllowedUserID,
		hours:  hours,
		offset: time.Duration(cfg.TimezoneOffsetHours) * time.Hour,
	}
}

// Run checks once a minute until ctx is done. Slots that passed before Run
// started are not sent.
func (s *Scheduler) Run(ctx context.Context, b *bot.Bot) {
	s.mu.Lock()
	if s.lastSent.IsZero() {
		s.lastSent = time.Now().UTC()
	}
	s.mu.Unlock()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.tick(ctx, b, now.UTC())
		}
	}
}

// tick sends one card when a slot became due since the last send.
func (s *Scheduler) tick(ctx context.Context, b *bot.Bot, now time.Time) bool {
	s.mu.Lock()
	slot, ok := s.latestDueSlot(now)
	if ok {
		s.lastSent = now
	}
	s.mu.Unlock()
	if !ok {
		return false
	}

	logger.Info("sending reminder", "chat_id", s.chatID, "slot", slot)
	s.sender.SendNextWord(ctx, b, s.chatID)
	return true
}

func (s *Scheduler) latestDueSlot(now time.Time) (time.Time, bool) {
	localNow := now.Add(s.offset)
	year, month, day := localNow.Date()

	var latest time.Time
	for _, hour := range s.hours {
		slotUTC := time.Date(year, month, day, hour, 0, 0, 0, time.UTC).Add(-s.offset)
		if now.Before(slotUTC) {
			continue
		}
		if !s.lastSent.IsZero() && !s.lastSent.Before(slotUTC) {
			continue
		}
		if slotUTC.After(latest) {
			latest = slotUTC
		}
	}
	if latest.IsZero() {
		return time.Time{}, false
	}
	return latest, true
}
