package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// PushClient delivers notifications to registered admin devices. Every call
// is best-effort: failures are logged and swallowed, never surfaced.
type PushClient struct {
	Endpoint  string
	ServerKey string
	HTTP      *http.Client
}

func NewPushClient(endpoint, serverKey string) *PushClient {
	return &PushClient{
		Endpoint:  endpoint,
		ServerKey: serverKey,
		HTTP:      &http.Client{Timeout: 10 * time.Second},
	}
}

type pushMessage struct {
	To           string `json:"to"`
	Notification struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	} `json:"notification"`
}

// Notify sends title/body to each device token.
func (p *PushClient) Notify(ctx context.Context, tokens []string, title, body string) {
	if p.Endpoint == "" || len(tokens) == 0 {
		return
	}
	for _, token := range tokens {
		msg := pushMessage{To: token}
		msg.Notification.Title = title
		msg.Notification.Body = body

		payload, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(payload))
		if err != nil {
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "key="+p.ServerKey)

		resp, err := p.HTTP.Do(req)
		if err != nil {
			log.Warn().Err(err).Msg("push delivery failed")
			continue
		}
		resp.Body.Close()
		if resp.StatusCode >= 300 {
			log.Warn().Int("status", resp.StatusCode).Msg("push endpoint rejected message")
		}
	}
}
