package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"text/tabwriter"

	adminusers "usersadmin/frontend/adminUsers"
	"usersadmin/frontend/shared/prompt"
	"usersadmin/infrastructure/cache"
	"usersadmin/infrastructure/config"
	"usersadmin/infrastructure/csrf"
	httpserver "usersadmin/infrastructure/http"
	"usersadmin/infrastructure/sqlite"
)

type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	out     io.Writer
	console *prompt.Console
	http    *http.Client
	db      *sqlite.DB
	dir     *adminusers.Directory
	tokens  adminusers.TokenProvider
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, in io.Reader, out io.Writer) (*app, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	csrf.SeedCookie(jar, base, cfg.SessionCookie, cfg.SessionID)
	hc := &http.Client{Jar: jar}

	db, err := sqlite.OpenSnapshot(ctx, cfg.SnapshotPath)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	dir, err := adminusers.NewDirectory(cfg.BaseURL, hc, db, cache.NewUserCache(), logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	var tokens adminusers.TokenProvider = &csrf.JarToken{Jar: jar, URL: base, Name: cfg.CSRFCookie, Prime: dir.Refresh}
	if cfg.CSRFToken != "" {
		tokens = csrf.Static(cfg.CSRFToken)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		out:     out,
		console: prompt.NewConsole(in, out),
		http:    hc,
		db:      db,
		dir:     dir,
		tokens:  tokens,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func (a *app) client(confirmer prompt.Confirmer) (*adminusers.Client, error) {
	return adminusers.NewClient(a.cfg.BaseURL, adminusers.ClientOptions{
		HTTPClient:  a.http,
		Tokens:      a.tokens,
		TokenHeader: a.cfg.CSRFHeader,
		Notifier:    a.console,
		Confirmer:   confirmer,
		Refresher:   a.dir,
		Logger:      a.logger,
	})
}

func (a *app) list(ctx context.Context) error {
	if err := a.dir.Refresh(ctx); err != nil {
		return err
	}
	records, err := a.dir.Records(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tFULL NAME\tSTATUS\tVERSION")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Username, r.FullName, r.StatusName, r.VersionHex)
	}
	return tw.Flush()
}

func (a *app) statuses(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("statuses", flag.ContinueOnError)
	fs.SetOutput(a.out)
	search := fs.String("q", "", "filter options by text")
	if err := fs.Parse(args); err != nil {
		return err
	}
	options, err := a.dir.FetchStatuses(ctx, *search)
	if err != nil {
		return err
	}
	for _, o := range options {
		fmt.Fprintf(a.out, "%s\t%s\n", o.ID, o.Text)
	}
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(a.out)
	var p adminusers.AddPayload
	fs.StringVar(&p.Username, "username", "", "login name")
	fs.StringVar(&p.FullName, "full-name", "", "display name")
	fs.StringVar(&p.Password, "password", "", "initial password")
	fs.StringVar(&p.StatusID, "status", "", "status id (see usersctl statuses)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, err := a.client(a.console)
	if err != nil {
		return err
	}
	_, err = c.SubmitAdd(ctx, p)
	return err
}

func (a *app) update(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(a.out)
	id := fs.String("id", "", "user id")
	username := fs.String("username", "", "new login name")
	fullName := fs.String("full-name", "", "new display name")
	password := fs.String("password", "", "new password; empty keeps the current one")
	status := fs.String("status", "", "new status id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rec, err := a.displayed(ctx, *id)
	if err != nil {
		return err
	}
	form := adminusers.EditFormFor(rec)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "username":
			form.Username = *username
		case "full-name":
			form.FullName = *fullName
		case "password":
			form.Password = *password
		case "status":
			form.StatusID = *status
		}
	})

	c, err := a.client(a.console)
	if err != nil {
		return err
	}
	_, err = c.SubmitUpdate(ctx, form)
	return err
}

func (a *app) remove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(a.out)
	id := fs.String("id", "", "user id")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rec, err := a.displayed(ctx, *id)
	if err != nil {
		return err
	}
	var confirmer prompt.Confirmer = a.console
	if *yes {
		confirmer = prompt.Assume(true)
	}
	c, err := a.client(confirmer)
	if err != nil {
		return err
	}
	_, err = c.SubmitDelete(ctx, rec.ID, rec.VersionHex)
	return err
}

// rights prints the matrix of -id. With -menu it replaces that menu's
// permissions with the given flags and saves the whole matrix.
func (a *app) rights(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rights", flag.ContinueOnError)
	fs.SetOutput(a.out)
	id := fs.String("id", "", "user id")
	menu := fs.Int("menu", 0, "menu id to change")
	view := fs.Bool("view", false, "grant view")
	create := fs.Bool("create", false, "grant create")
	edit := fs.Bool("edit", false, "grant edit")
	del := fs.Bool("delete", false, "grant delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("-id is required")
	}

	matrix, err := a.dir.FetchRights(ctx, *id)
	if err != nil {
		return err
	}
	if *menu == 0 {
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "MENU\tNAME\tVIEW\tCREATE\tEDIT\tDELETE")
		for _, r := range matrix {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", r.MenuID, r.MenuName, mark(r.CanView), mark(r.CanCreate), mark(r.CanEdit), mark(r.CanDelete))
		}
		return tw.Flush()
	}

	found := false
	for i := range matrix {
		if matrix[i].MenuID == *menu {
			matrix[i].CanView, matrix[i].CanCreate, matrix[i].CanEdit, matrix[i].CanDelete = *view, *create, *edit, *del
			found = true
		}
	}
	if !found {
		return fmt.Errorf("menu %d is not in the rights matrix of user %s", *menu, *id)
	}
	c, err := a.client(a.console)
	if err != nil {
		return err
	}
	_, err = c.SubmitRights(ctx, *id, matrix)
	return err
}

func mark(ok bool) string {
	if ok {
		return "x"
	}
	return "-"
}

// displayed returns the record as last listed, so update and delete forward
// the version the operator actually saw.
func (a *app) displayed(ctx context.Context, id string) (adminusers.UserRecord, error) {
	if id == "" {
		return adminusers.UserRecord{}, errors.New("-id is required")
	}
	rec, err := a.dir.Record(ctx, id)
	if errors.Is(err, adminusers.ErrRecordNotDisplayed) {
		return adminusers.UserRecord{}, fmt.Errorf("%w; run `usersctl list` first", err)
	}
	return rec, err
}

func runStub(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) int {
	server := httpserver.NewServer(cfg.StubAddr, httpserver.NewUserStore(nil), logger)
	if err := server.Start(); err != nil {
		logger.Error("start stub backend", slog.Any("err", err))
		return 1
	}
	fmt.Fprintf(out, "stub backend listening on http://%s\n", server.ListenAddr())
	<-ctx.Done()
	if err := server.Stop(); err != nil {
		logger.Error("graceful shutdown error", slog.Any("err", err))
		return 1
	}
	return 0
}
