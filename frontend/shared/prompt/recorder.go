package prompt

import (
	"context"
	"sync"
)

// Recorder is a test double that records every notice and question and
// answers confirmations with Answer.
type Recorder struct {
	mu        sync.Mutex
	Answer    bool
	Err       error
	notices   []Notice
	questions []string
}

func NewRecorder(answer bool) *Recorder {
	return &Recorder{Answer: answer}
}

func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *Recorder) Confirm(_ context.Context, question string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions = append(r.questions, question)
	if r.Err != nil {
		return false, r.Err
	}
	return r.Answer, nil
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

func (r *Recorder) Questions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.questions...)
}

// Messages returns notice texts in order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.notices))
	for _, n := range r.notices {
		out = append(out, n.Message)
	}
	return out
}
