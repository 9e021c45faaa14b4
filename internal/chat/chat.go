// Package chat keeps the append-only conversation with the CRM assistant.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/oakwood-commons/crmx/pkg/logger"
)

const (
	// Greeting is the first message of every conversation.
	Greeting = "Hello! I'm your AI CRM assistant. How can I help you today?"
	// Fallback replaces the assistant reply when the round trip fails.
	Fallback = "Sorry, I'm having trouble connecting. Please try again later."
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrInFlight     = errors.New("assistant reply pending")
)

// Sender identifies who wrote a message.
type Sender string

const (
	FromUser Sender = "user"
	FromBot  Sender = "bot"
)

// Message is one entry of the conversation log.
type Message struct {
	ID   uuid.UUID
	Text string
	From Sender
	At   time.Time
}

// Assistant produces a reply for a user message.
type Assistant interface {
	Reply(ctx context.Context, message string) (string, error)
}

// AssistantFunc adapts a function to Assistant.
type AssistantFunc func(ctx context.Context, message string) (string, error)

func (f AssistantFunc) Reply(ctx context.Context, message string) (string, error) {
	return f(ctx, message)
}

// Controller owns the message log and the pending-reply flag.
type Controller struct {
	assistant Assistant
	log       logr.Logger
	now       func() time.Time
	newID     func() uuid.UUID

	mu       sync.Mutex
	messages []Message
	inFlight bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger for exchanges and fallbacks.
func WithLogger(l logr.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithClock overrides the timestamp source for messages.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDs overrides message ID generation.
func WithIDs(newID func() uuid.UUID) Option {
	return func(c *Controller) { c.newID = newID }
}

// New creates a conversation seeded with the greeting.
func New(assistant Assistant, opts ...Option) *Controller {
	c := &Controller{
		assistant: assistant,
		log:       *logger.GetNoopLogger(),
		now:       time.Now,
		newID:     uuid.New,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.messages = []Message{c.message(Greeting, FromBot)}
	return c
}

func (c *Controller) message(text string, from Sender) Message {
	return Message{ID: c.newID(), Text: text, From: from, At: c.now()}
}

// Messages returns a copy of the log.
func (c *Controller) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

// InFlight reports whether a reply is pending.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Exchange is a user message awaiting its reply.
type Exchange struct {
	c    *Controller
	text string
	once sync.Once
}

// Text returns the user message being answered.
func (e *Exchange) Text() string {
	return e.text
}

// Begin appends the user message and marks a reply as pending.
func (c *Controller) Begin(text string) (*Exchange, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil, ErrEmptyMessage
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return nil, ErrInFlight
	}
	c.inFlight = true
	c.messages = append(c.messages, c.message(t, FromUser))
	return &Exchange{c: c, text: t}, nil
}

// Run asks the assistant and appends its reply, or the fallback when the call
// fails or returns nothing. The appended message is returned.
func (e *Exchange) Run(ctx context.Context) Message {
	var msg Message
	e.once.Do(func() {
		msg = e.run(ctx)
	})
	return msg
}

func (e *Exchange) run(ctx context.Context) Message {
	c := e.c
	reply, err := c.assistant.Reply(ctx, e.text)
	text := strings.TrimSpace(reply)
	switch {
	case err != nil:
		c.log.V(1).Info("assistant reply failed", "error", err.Error())
		text = Fallback
	case text == "":
		c.log.V(1).Info("assistant reply empty")
		text = Fallback
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	msg := c.message(text, FromBot)
	c.messages = append(c.messages, msg)
	c.inFlight = false
	return msg
}

// Send is Begin followed by Run.
func (c *Controller) Send(ctx context.Context, text string) (Message, error) {
	ex, err := c.Begin(text)
	if err != nil {
		return Message{}, err
	}
	return ex.Run(ctx), nil
}
