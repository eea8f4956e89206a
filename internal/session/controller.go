package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prachya/gamesage/internal/memory"
	"github.com/prachya/gamesage/internal/router"
)

// ErrNotInitialized indicates a turn was submitted before Init.
var ErrNotInitialized = errors.New("session not initialized")

// systemInstruction constrains the assistant to the game domain and the
// refusal style for every model pass.
const systemInstruction = "คุณคือผู้ช่วยเรื่องวิดีโอเกม ตอบคำถามเกี่ยวกับเกม แพลตฟอร์ม " +
	"ราคา และข่าวสารวงการเกมเท่านั้น ตอบเป็นภาษาเดียวกับผู้ใช้ กระชับ อ่านเข้าใจง่าย " +
	"ถ้าคำถามไม่เกี่ยวกับเกม ให้ปฏิเสธอย่างสุภาพและชวนให้ถามเรื่องเกมแทน " +
	"You are a video-game assistant. Only answer game-related questions; " +
	"politely refuse anything else."

// TopicGate is the in/out-of-domain classifier contract.
type TopicGate interface {
	InDomain(text string) bool
}

// Refusals produces out-of-domain responses.
type Refusals interface {
	Next() string
}

// IntentRouter classifies an in-domain message.
type IntentRouter interface {
	Route(ctx context.Context, text string, hasModel bool) router.Decision
}

// ChatModel is the inference collaborator contract.
type ChatModel interface {
	Chat(ctx context.Context, msgs []memory.Message) (string, error)
}

// Config contains all required parameters for the Controller.
type Config struct {
	Gate     TopicGate
	Refusals Refusals
	Router   IntentRouter
	Store    *memory.Store
	Model    ChatModel // optional: nil degrades routing to pass-through
	Logger   *slog.Logger
}

// validate checks if all required parameters are present.
func (cfg Config) validate() error {
	if cfg.Gate == nil {
		return errors.New("topic gate is required")
	}
	if cfg.Refusals == nil {
		return errors.New("refusal generator is required")
	}
	if cfg.Router == nil {
		return errors.New("intent router is required")
	}
	if cfg.Store == nil {
		return errors.New("memory store is required")
	}
	return nil
}

// Controller orchestrates the per-turn flow. It owns the conversation
// and is the sole writer to the memory store.
//
// Turns are strictly sequential: one message is fully processed before
// the next is accepted, so no locking is needed.
type Controller struct {
	gate     TopicGate
	refusals Refusals
	router   IntentRouter
	store    *memory.Store
	model    ChatModel
	logger   *slog.Logger

	sess Session
	conv []memory.Message
}

// NewController creates a Controller. Call Init before the first turn.
func NewController(cfg Config) (*Controller, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("controller config: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Controller{
		gate:     cfg.Gate,
		refusals: cfg.Refusals,
		router:   cfg.Router,
		store:    cfg.Store,
		model:    cfg.Model,
		logger:   cfg.Logger,
	}, nil
}

// Init performs the session's initialization transition and loads the
// conversation. On the first initialization of a run any stale
// conversation from a previous run is discarded: fresh conversation per
// run is a policy, not an accident.
func (c *Controller) Init(sess Session) (Session, error) {
	if !sess.Initialized {
		if err := c.store.Clear(); err != nil {
			return sess, fmt.Errorf("discarding stale conversation: %w", err)
		}
		sess.Initialized = true
		c.logger.Info("session initialized", "session_id", sess.ID)
	}

	conv, err := c.store.Load()
	if err != nil {
		return sess, fmt.Errorf("loading conversation: %w", err)
	}

	c.sess = sess
	c.conv = conv
	return sess, nil
}

// Session returns the current session value.
func (c *Controller) Session() Session {
	return c.sess
}

// Messages returns a copy of the conversation so far.
func (c *Controller) Messages() []memory.Message {
	out := make([]memory.Message, len(c.conv))
	copy(out, c.conv)
	return out
}

// SetModel swaps the inference collaborator (e.g. after the user picks
// a different model). A nil model degrades routing to pass-through.
func (c *Controller) SetModel(model ChatModel) {
	c.model = model
}

// HandleTurn processes one user message end to end and returns the
// assistant message for display. Collaborator failures surface as
// inline text in the response; only persistence failures return an
// error.
func (c *Controller) HandleTurn(ctx context.Context, text string) (memory.Message, error) {
	if !c.sess.Initialized {
		return memory.Message{}, ErrNotInitialized
	}

	// Off-topic turns are recorded but never reach the router: the user
	// message is appended together with the refusal, after the gate
	// decision.
	if !c.gate.InDomain(text) {
		reply := memory.Message{Role: memory.RoleAssistant, Content: c.refusals.Next()}
		c.conv = append(c.conv,
			memory.Message{Role: memory.RoleUser, Content: text},
			reply,
		)
		if err := c.store.Save(c.conv); err != nil {
			return memory.Message{}, fmt.Errorf("persisting refusal turn: %w", err)
		}
		c.logger.Debug("turn refused", "session_id", c.sess.ID)
		return reply, nil
	}

	c.conv = append(c.conv, memory.Message{Role: memory.RoleUser, Content: text})
	if err := c.store.Save(c.conv); err != nil {
		return memory.Message{}, fmt.Errorf("persisting user turn: %w", err)
	}

	decision := c.router.Route(ctx, text, c.model != nil)
	c.logger.Debug("turn routed",
		"session_id", c.sess.ID,
		"mode", decision.Mode.String(),
		"enriched", decision.UsedEnrichment,
	)

	var content string
	if decision.Mode == router.ModeStore {
		// Store payload is already a final answer.
		content = decision.Payload
	} else {
		content = c.complete(ctx, decision.Payload)
	}

	reply := memory.Message{
		Role:           memory.RoleAssistant,
		Content:        content,
		UsedEnrichment: decision.UsedEnrichment,
	}
	c.conv = append(c.conv, reply)
	if err := c.store.Save(c.conv); err != nil {
		return memory.Message{}, fmt.Errorf("persisting assistant turn: %w", err)
	}
	return reply, nil
}

// complete assembles the full instruction sequence and runs the model
// pass: system instruction, prior history (excluding the current user
// turn, enrichment flags stripped), then the routed payload as the
// final user entry. Model failure becomes an inline error string.
func (c *Controller) complete(ctx context.Context, payload string) string {
	if c.model == nil {
		return payload
	}

	msgs := make([]memory.Message, 0, len(c.conv)+1)
	msgs = append(msgs, memory.Message{Role: memory.RoleSystem, Content: systemInstruction})
	for _, m := range c.conv[:len(c.conv)-1] {
		msgs = append(msgs, memory.Message{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, memory.Message{Role: memory.RoleUser, Content: payload})

	out, err := c.model.Chat(ctx, msgs)
	if err != nil {
		c.logger.Error("model call failed", "session_id", c.sess.ID, "error", err)
		return fmt.Sprintf("⚠️ ไม่สามารถติดต่อโมเดลได้: %v", err)
	}
	return out
}

// ClearConversation resets the in-memory conversation and persists the
// empty state. The durable file keeps existing with an empty array.
func (c *Controller) ClearConversation() error {
	c.conv = nil
	if err := c.store.Save(nil); err != nil {
		return fmt.Errorf("persisting cleared conversation: %w", err)
	}
	c.logger.Info("conversation cleared", "session_id", c.sess.ID)
	return nil
}

// ClearMemory empties both the in-memory conversation and the durable
// store.
func (c *Controller) ClearMemory() error {
	c.conv = nil
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("clearing chat memory: %w", err)
	}
	c.logger.Info("chat memory cleared", "session_id", c.sess.ID)
	return nil
}
