package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const telegramMessageLimit = 4096

// notifier pushes alert messages to a Telegram chat. It is disabled when the
// bot token or chat id is not configured.
type notifier struct {
	url    string
	chatID string
	client *http.Client
}

func newNotifier(config *Config) *notifier {
	n := &notifier{
		chatID: config.TelegramChatID,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	if config.TelegramBotToken != "" && config.TelegramChatID != "" {
		n.url = "https://api.telegram.org/bot" + config.TelegramBotToken + "/sendMessage"
		zapLogger.Info("Telegram alerting enabled")
	} else {
		zapLogger.Warn("Telegram bot token or chat id not set, alerting disabled")
	}
	return n
}

func (n *notifier) sendAlert(message string) error {
	if n.url == "" {
		return nil
	}

	// Telegram rejects over-long messages
	if len(message) > telegramMessageLimit {
		message = message[:telegramMessageLimit-10] + "\n...(cut)"
	}

	payload, err := json.Marshal(map[string]string{
		"chat_id":    n.chatID,
		"text":       message,
		"parse_mode": "HTML",
	})
	if err != nil {
		return err
	}

	resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to send Telegram alert: %s", err)
	}

	body, err := readBody(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Telegram API returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// alert sends the message in a separate goroutine to avoid slowing down the
// response.
func (n *notifier) alert(ctx context.Context, message string) {
	go func() {
		if err := n.sendAlert(message); err != nil {
			logger(ctx, err)
		}
	}()
}
