// Package telegram sends a digest of mined rules via the Telegram Bot API.
//
// Rules are grouped by consequent and formatted as MarkdownV2. Delivery is
// retried with a linear backoff.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rewired-gh/assocmine/internal/logger"
	"github.com/rewired-gh/assocmine/internal/models"
	"github.com/rewired-gh/assocmine/internal/rank"
)

// maxMessageLen is the Telegram limit for a single text message.
const maxMessageLen = 4096

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client handles Telegram notifications
type Client struct {
	bot            sender
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	return newClient(bot, chatIDInt, maxRetries, retryDelayBase), nil
}

func newClient(bot sender, chatID int64, maxRetries int, retryDelayBase time.Duration) *Client {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	return &Client{
		bot:            bot,
		chatID:         chatID,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}
}

// Send posts a digest of rules from report. rules are expected to be ranked
// already.
func (c *Client) Send(ctx context.Context, report *models.Report, rules []models.Rule) error {
	msg := tgbotapi.NewMessage(c.chatID, formatMessage(report, rules))
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			logger.Info("Sent digest of %d rules to Telegram", len(rules))
			return nil
		}
		lastErr = err
		logger.Warn("Telegram send attempt %d/%d failed: %v", i+1, c.maxRetries, err)

		if i == c.maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelayBase * time.Duration(i+1)):
		}
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// formatMessage renders the digest, dropping trailing rules that would push
// it past the message limit.
func formatMessage(report *models.Report, rules []models.Rule) string {
	var head strings.Builder
	head.WriteString("*Association rules*\n")
	fmt.Fprintf(&head, "Run: `%s`\n", report.RunID)
	if report.Source != "" {
		fmt.Fprintf(&head, "Source: %s\n", escapeMarkdownV2(report.Source))
	}
	fmt.Fprintf(&head, "Transactions: %d, rules: %d\n",
		report.Transactions, len(report.Rules))
	fmt.Fprintf(&head, "Thresholds: support %s, confidence %s\n\n",
		escapeMarkdownV2(percent(report.Params.MinSupport)),
		escapeMarkdownV2(percent(report.Params.MinConfidence)))

	if len(rules) == 0 {
		head.WriteString("_No rules passed the thresholds_\n")
		return head.String()
	}

	var body strings.Builder
	shown := 0
	n := 0
	for _, group := range rank.GroupByConsequent(rules) {
		section := fmt.Sprintf("➡️ *%s*  best lift %s\n",
			escapeMarkdownV2("{"+group.Consequent+"}"),
			escapeMarkdownV2(strconv.FormatFloat(group.BestLift, 'f', 2, 64)))
		for _, r := range group.Rules {
			n++
			line := fmt.Sprintf("%d\\. %s  conf *%s* lift *%s*\n",
				n,
				escapeMarkdownV2("{"+strings.Join(r.Antecedent, ", ")+"}"),
				escapeMarkdownV2(percent(r.Confidence)),
				escapeMarkdownV2(strconv.FormatFloat(r.Lift, 'f', 2, 64)))
			if head.Len()+body.Len()+len(section)+len(line)+64 > maxMessageLen {
				fmt.Fprintf(&body, "\n_\\.\\.\\. and %d more_\n", len(rules)-shown)
				return head.String() + body.String()
			}
			body.WriteString(section)
			section = ""
			body.WriteString(line)
			shown++
		}
		body.WriteString("\n")
	}
	return head.String() + body.String()
}

func percent(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
