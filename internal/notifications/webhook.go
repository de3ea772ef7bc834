package notifications

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aslanlabs/aslan-auto-trader/internal/httputil"
	"github.com/aslanlabs/aslan-auto-trader/internal/models"
)

type Sender struct {
	webhookURL string
	botName    string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewSender(webhookURL, botName string) *Sender {
	if botName == "" {
		botName = "AslanAutoTrader"
	}
	return &Sender{
		webhookURL: webhookURL,
		botName:    botName,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    5 * time.Second,
		},
	}
}

func (s *Sender) Send(msg string) {
	formatted := fmt.Sprintf("[%s] %s", s.botName, msg)
	fmt.Printf("[%s] %s\n", time.Now().UTC().Format(time.RFC3339), formatted)

	if s.webhookURL == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httputil.PostJSON(ctx, s.httpClient, s.retry, s.webhookURL, s.formatPayload(formatted)); err != nil {
		fmt.Printf("[CHAT ERROR] Failed to send notification after retries: %v\n", err)
	}
}

// SendCompletion pushes the outcome of one execution attempt, success or
// failure, in a single line.
func (s *Sender) SendCompletion(note models.CompletionNote) {
	if note.Success {
		s.Send(fmt.Sprintf("Execution confirmed: %s %s -> %s %s (tx %s, gas %d)",
			note.AmountIn, note.FromToken, note.AmountOut, note.ToToken, note.TxHash, note.GasUsed))
		return
	}
	if note.TxHash != "" {
		s.Send(fmt.Sprintf("Execution failed: %s -> %s (tx %s)", note.FromToken, note.ToToken, note.TxHash))
		return
	}
	s.Send(fmt.Sprintf("Execution did not run: %s -> %s", note.FromToken, note.ToToken))
}

func (s *Sender) formatPayload(msg string) map[string]string {
	if strings.Contains(s.webhookURL, "discord") {
		return map[string]string{
			"content":  msg,
			"username": s.botName,
		}
	}
	return map[string]string{
		"text":     fmt.Sprintf("`%s`", msg),
		"username": s.botName,
	}
}

func (s *Sender) Enabled() bool {
	return s.webhookURL != ""
}
