package html

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Alert renders one operator notification as a dismissible banner.
func Alert(kind, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert alert-%s alert-dismissible" role="alert">%s<button type="button" class="btn-close" data-bs-dismiss="alert" aria-label="Close"></button></div>`,
			templ.EscapeString(kind), templ.EscapeString(message))
		return err
	})
}

// AlertList renders banners in the order given.
func AlertList(alerts ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(alerts) == 0 {
			return nil
		}
		if _, err := io.WriteString(w, `<div class="alerts">`); err != nil {
			return err
		}
		for _, a := range alerts {
			if err := a.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// ConfirmDialog asks the operator to repeat an irreversible action with an
// explicit confirm=yes field.
func ConfirmDialog(question, action string, fields map[string]string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<form method="post" action="%s" class="confirm-dialog"><p>%s</p>`,
			templ.EscapeString(action), templ.EscapeString(question)); err != nil {
			return err
		}
		for _, name := range sortedKeys(fields) {
			if _, err := fmt.Fprintf(w, `<input type="hidden" name="%s" value="%s">`,
				templ.EscapeString(name), templ.EscapeString(fields[name])); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `<button type="submit" name="confirm" value="yes" class="btn btn-danger">Delete</button></form>`)
		return err
	})
}
