package communication

import (
	"fmt"

	"axiapac.com/backoffice/config"
	"github.com/slack-go/slack"
)

// Notifier posts operational messages.
type Notifier interface {
	Info(message string) error
	Error(message string) error
}

type Slack struct {
	client  *slack.Client
	options SlackOption
}

type SlackOption struct {
	InfoChannelID  string
	ErrorChannelID string
}

// ConnectSlack returns a Slack notifier, or a no-op one when no bot token
// is configured.
func ConnectSlack(cfg config.SlackConfig) Notifier {
	if !cfg.Enabled() {
		return Nop{}
	}
	return NewSlack(cfg.BotToken, SlackOption{InfoChannelID: cfg.InfoChannelID, ErrorChannelID: cfg.ErrorChannelID})
}

func NewSlack(token string, options SlackOption) *Slack {
	client := slack.New(token)
	return &Slack{client: client, options: options}
}

func (s *Slack) postMessage(channelID, message string) error {
	_, _, err := s.client.PostMessage(
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

func (s *Slack) Info(message string) error {
	return s.postMessage(s.options.InfoChannelID, message)
}

func (s *Slack) Error(message string) error {
	return s.postMessage(s.options.ErrorChannelID, message)
}

type Nop struct{}

func (Nop) Info(string) error  { return nil }
func (Nop) Error(string) error { return nil }
