package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	goversion "github.com/caarlos0/go-version"

	adminusers "usersadmin/frontend/adminUsers"
	"usersadmin/infrastructure/config"
)

var (
	version   = "dev"
	commit    = ""
	treeState = ""
	date      = ""
	builtBy   = ""
)

const usage = `Usage: usersctl <command> [flags]

Commands:
  list       refresh and print the users list
  statuses   print the status options
  add        create a user
  update     change a user (starts from the displayed record)
  delete     delete a user after confirmation
  rights     print or change a user's menu rights
  stub       run a local stand-in for the setup backend
  version    print build information
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	cmd, rest := args[0], args[1:]
	if cmd == "version" {
		fmt.Fprintln(stdout, buildVersion().String())
		return 0
	}
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		fmt.Fprint(stdout, usage)
		return 0
	}

	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	logger := config.NewLogger(cfg, stderr)

	if cmd == "stub" {
		return runStub(ctx, cfg, logger, stdout)
	}

	a, err := newApp(ctx, cfg, logger, stdin, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "usersctl: %v\n", err)
		return 1
	}
	defer a.Close()

	switch cmd {
	case "list":
		err = a.list(ctx)
	case "statuses":
		err = a.statuses(ctx, rest)
	case "add":
		err = a.add(ctx, rest)
	case "update":
		err = a.update(ctx, rest)
	case "delete":
		err = a.remove(ctx, rest)
	case "rights":
		err = a.rights(ctx, rest)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}
	return exitCode(err, stderr)
}

// exitCode maps outcomes to exit status. The operator has already been
// notified of validation, server and transport errors.
func exitCode(err error, stderr io.Writer) int {
	var (
		verr *adminusers.ValidationError
		serr *adminusers.ServerError
		terr *adminusers.TransportError
	)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, adminusers.ErrDeleteDeclined):
		return 0
	case errors.As(err, &verr), errors.As(err, &serr), errors.As(err, &terr):
		return 1
	default:
		fmt.Fprintf(stderr, "usersctl: %v\n", err)
		return 1
	}
}

func buildVersion() goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails("usersctl", "Admin users submission client", ""),
		func(i *goversion.Info) {
			if commit != "" {
				i.GitCommit = commit
			}
			if version != "" {
				i.GitVersion = version
			}
			if treeState != "" {
				i.GitTreeState = treeState
			}
			if date != "" {
				i.BuildDate = date
			}
			if builtBy != "" {
				i.BuiltBy = builtBy
			}
		},
	)
}
