// Command taskctl is the command-line client for the auth and task services.
// It keeps the session token on disk between invocations and refreshes it
// shortly before it expires.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/yanqian/taskhub/internal/apiclient"
	"github.com/yanqian/taskhub/internal/infra/config"
	"github.com/yanqian/taskhub/internal/session"
	"github.com/yanqian/taskhub/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath  string
	authURL     string
	taskURL     string
	sessionFile string
	logLevel    string
	jsonOutput  bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var flags globalFlags
	flagSet := pflag.NewFlagSet("taskctl", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&flags.configPath, "config", "", "path to a YAML config file (overrides CONFIG_PATH)")
	flagSet.StringVar(&flags.authURL, "auth-url", "", "auth service base URL")
	flagSet.StringVar(&flags.taskURL, "task-url", "", "task service base URL")
	flagSet.StringVar(&flags.sessionFile, "session-file", "", "where the session token is stored")
	flagSet.StringVar(&flags.logLevel, "log-level", "warn", "log level written to stderr")
	flagSet.BoolVar(&flags.jsonOutput, "json", false, "print raw JSON instead of text")
	flagSet.Usage = func() { printUsage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	rest := flagSet.Args()
	if len(rest) == 0 {
		printUsage(stderr, flagSet)
		return errors.New("no command given")
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		return fmt.Errorf("unknown command %q, run taskctl --help", rest[0])
	}

	app, err := newCLI(flags, stdout, stderr)
	if err != nil {
		return err
	}
	return cmd.run(ctx, app, rest[1:])
}

// cli bundles what every command needs.
type cli struct {
	cfg     *config.Config
	api     *apiclient.Client
	session *session.Client
	store   *session.FileStore
	out     *printer
	stderr  io.Writer
}

func newCLI(flags globalFlags, stdout, stderr io.Writer) (*cli, error) {
	if flags.configPath != "" {
		if err := os.Setenv("CONFIG_PATH", flags.configPath); err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	if flags.authURL != "" {
		cfg.Session.AuthURL = flags.authURL
	}
	if flags.taskURL != "" {
		cfg.Session.TaskURL = flags.taskURL
	}
	if flags.sessionFile != "" {
		cfg.Session.StorePath = flags.sessionFile
	}

	log := logger.NewTo(stderr, "taskctl", flags.logLevel)

	cookies, err := session.NewCookieMirror(cfg.Session.AuthURL, cfg.Session.TaskURL)
	if err != nil {
		return nil, err
	}
	api := apiclient.New(cfg.Session.AuthURL, cfg.Session.TaskURL, cfg.Session.Timeout, cookies.Jar())
	store, err := session.NewFileStore(cfg.Session.StorePath)
	if err != nil {
		return nil, err
	}
	sess, err := session.New(session.Options{
		Remote:        api,
		Store:         store,
		Cookies:       cookies,
		RefreshWindow: cfg.Session.RefreshWindow,
		Logger:        log,
	})
	if err != nil {
		return nil, err
	}
	sess.Subscribe(func(e session.Event) {
		log.Debug("session changed", "event", e.Type)
	})

	return &cli{
		cfg:     cfg,
		api:     api,
		session: sess,
		store:   store,
		out:     &printer{w: stdout, json: flags.jsonOutput},
		stderr:  stderr,
	}, nil
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintln(w, "usage: taskctl [global flags] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "global flags:")
	fmt.Fprint(w, flagSet.FlagUsages())
}
