package chatagent

import (
	"context"
	"errors"
)

var (
	// ErrNoAnswer means the agent replied but nothing in the reply was a usable answer.
	ErrNoAnswer = errors.New("chatagent: no answer in agent reply")
	// ErrAgentUnavailable covers transport failures, non-2xx replies and undecodable bodies.
	ErrAgentUnavailable = errors.New("chatagent: agent unavailable")
)

const AnonymousUser = "anonymous_user"

// Request is one user turn sent to a remote agent.
type Request struct {
	ConversationID string
	User           string
	Query          string
}

type Option func(*Options)

type Options struct {
	BotID string // Override the provider's default bot
}

func WithBotID(botID string) Option {
	return func(o *Options) {
		o.BotID = botID
	}
}

// Agent is a remote conversational agent keyed by conversation id.
type Agent interface {
	// Send blocks for the full reply and returns the answer text.
	Send(ctx context.Context, req Request, options ...Option) (string, error)

	// Stream returns the raw event stream. The caller must Close it.
	Stream(ctx context.Context, req Request, options ...Option) (*Stream, error)
}
