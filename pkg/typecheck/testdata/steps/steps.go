package steps

import "example.com/sdk/flow"

type SlackMessageConfig struct {
	Channel string
	Text    string
	Urgent  bool
}

type SlackMessage struct {
	cfg SlackMessageConfig
}

func NewSlackMessage(cfg SlackMessageConfig) *SlackMessage {
	return &SlackMessage{cfg: cfg}
}

func (s *SlackMessage) Action(ctx flow.Context) *SlackMessage { return s }
