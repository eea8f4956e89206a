// Package refusal produces the out-of-domain responses.
package refusal

import "math/rand/v2"

// lines are the pre-authored refusal sentences. Draws are independent
// and uniform; repeats are allowed.
var lines = [...]string{
	"ขอโทษครับ ผมตอบได้เฉพาะเรื่องเกมเท่านั้น 🎮",
	"ผมเป็นผู้ช่วยเรื่องเกมครับ ลองถามเกี่ยวกับเกมดูนะ 🕹️",
	"Sorry, I can only talk about games. Ask me anything game-related! 🎮",
	"หัวข้อนี้ผมไม่ถนัดครับ ถามเรื่องเกมมาได้เลย",
	"That's outside my area. Games are my thing. 🕹️",
	"ผมขอข้ามคำถามนี้นะครับ ถ้าเป็นเรื่องเกมผมช่วยได้เต็มที่ 🎮",
}

// Generator selects refusal sentences with an injected sampler so tests
// can substitute a deterministic one.
type Generator struct {
	sample func(n int) int
}

// New creates a Generator. sample must return a value in [0, n); nil
// uses math/rand/v2.
func New(sample func(n int) int) *Generator {
	if sample == nil {
		sample = rand.IntN
	}
	return &Generator{sample: sample}
}

// Next returns one refusal sentence. Stateless between calls.
func (g *Generator) Next() string {
	return lines[g.sample(len(lines))]
}
