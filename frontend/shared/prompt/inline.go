package prompt

import (
	"context"
	"io"
	"sync"

	"github.com/a-h/templ"

	"usersadmin/frontend/shared/html"
)

// Inline is the in-page variant. Notices are collected and rendered as alert
// banners; confirmation comes from a prior form step (confirm=yes).
type Inline struct {
	mu        sync.Mutex
	confirmed bool
	notices   []Notice
	pending   string
}

func NewInline(confirmed bool) *Inline {
	return &Inline{confirmed: confirmed}
}

func (i *Inline) Notify(_ context.Context, n Notice) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.notices = append(i.notices, n)
}

func (i *Inline) Confirm(_ context.Context, question string) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.confirmed {
		i.pending = question
	}
	return i.confirmed, nil
}

// Pending returns the question that was declined for lack of confirmation.
func (i *Inline) Pending() (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.pending, i.pending != ""
}

// Component renders the collected notices.
func (i *Inline) Component() templ.Component {
	i.mu.Lock()
	alerts := make([]templ.Component, 0, len(i.notices))
	for _, n := range i.notices {
		alerts = append(alerts, html.Alert(alertKind(n.Level), n.Message))
	}
	i.mu.Unlock()
	return html.AlertList(alerts...)
}

func (i *Inline) Render(ctx context.Context, w io.Writer) error {
	return i.Component().Render(ctx, w)
}

func alertKind(l Level) string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "danger"
	default:
		return "info"
	}
}
