package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/yanqian/taskhub/internal/apiclient"
	"github.com/yanqian/taskhub/internal/domain/auth"
	"github.com/yanqian/taskhub/internal/domain/task"
	"github.com/yanqian/taskhub/internal/session"
)

const passwordEnv = "TASKCTL_PASSWORD"

type command struct {
	summary string
	run     func(ctx context.Context, c *cli, args []string) error
}

var commandOrder = []string{"register", "login", "logout", "whoami", "status", "refresh", "tasks"}

var commands = map[string]command{
	"register": {summary: "create an account and start a session", run: runRegister},
	"login":    {summary: "log in with email and password", run: runLogin},
	"logout":   {summary: "end the session", run: runLogout},
	"whoami":   {summary: "show the logged in user", run: runWhoami},
	"status":   {summary: "inspect the stored token without contacting a service", run: runStatus},
	"refresh":  {summary: "refresh the token if it is close to expiry", run: runRefresh},
	"tasks":    {summary: "list|create|get|update|delete tasks", run: runTasks},
}

func newFlagSet(c *cli, name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("taskctl "+name, pflag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

func passwordFlag(fs *pflag.FlagSet, password string) string {
	if password != "" || fs.Changed("password") {
		return password
	}
	return os.Getenv(passwordEnv)
}

func runRegister(ctx context.Context, c *cli, args []string) error {
	var req auth.RegisterRequest
	fs := newFlagSet(c, "register")
	fs.StringVar(&req.Name, "name", "", "display name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Password, "password", "", "password (or "+passwordEnv+")")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req.Password = passwordFlag(fs, req.Password)

	resp, err := c.api.Register(ctx, req)
	if err != nil {
		return describe(err)
	}
	if err := c.session.SaveToken(resp.Token, &resp.User); err != nil {
		return err
	}
	if c.out.json {
		return c.out.printJSON(resp)
	}
	c.out.linef("registered %s <%s>, id %d", resp.User.Name, resp.User.Email, resp.User.ID)
	c.out.linef("token expires %s", resp.TokenInfo.ExpiresAt)
	return nil
}

func runLogin(ctx context.Context, c *cli, args []string) error {
	var req auth.LoginRequest
	fs := newFlagSet(c, "login")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Password, "password", "", "password (or "+passwordEnv+")")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req.Password = passwordFlag(fs, req.Password)

	resp, err := c.api.Login(ctx, req)
	if err != nil {
		return describe(err)
	}
	var user *auth.UserView
	if profile, err := c.api.Me(ctx, resp.Token); err == nil {
		user = &profile
	}
	if err := c.session.SaveToken(resp.Token, user); err != nil {
		return err
	}
	if c.out.json {
		return c.out.printJSON(resp)
	}
	if user != nil {
		c.out.linef("logged in as %s <%s>", user.Name, user.Email)
	} else {
		c.out.linef("logged in as %s", req.Email)
	}
	return nil
}

func runLogout(ctx context.Context, c *cli, args []string) error {
	if err := newFlagSet(c, "logout").Parse(args); err != nil {
		return err
	}
	if err := c.session.Logout(ctx); err != nil {
		return err
	}
	c.out.linef("logged out")
	return nil
}

func runWhoami(ctx context.Context, c *cli, args []string) error {
	if err := newFlagSet(c, "whoami").Parse(args); err != nil {
		return err
	}
	var user auth.UserView
	err := c.authorized(ctx, func(token string) error {
		var err error
		user, err = c.api.Me(ctx, token)
		return err
	})
	if err != nil {
		return err
	}
	return c.out.user(user)
}

func runStatus(_ context.Context, c *cli, args []string) error {
	if err := newFlagSet(c, "status").Parse(args); err != nil {
		return err
	}
	status := c.session.Status()
	if c.out.json {
		return c.out.printJSON(status)
	}
	c.out.linef("session file: %s", c.store.Path())
	if !status.Valid {
		c.out.linef("not authenticated (%s)", status.Reason)
		return nil
	}
	c.out.linef("authenticated as %s until %s", status.Email, status.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func runRefresh(ctx context.Context, c *cli, args []string) error {
	if err := newFlagSet(c, "refresh").Parse(args); err != nil {
		return err
	}
	before, _ := c.session.Token()
	after, err := c.session.MaybeRefresh(ctx)
	if err != nil {
		return describe(err)
	}
	status := c.session.Status()
	if after == before {
		c.out.linef("token still valid until %s", status.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
		return nil
	}
	c.out.linef("token refreshed, valid until %s", status.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func runTasks(ctx context.Context, c *cli, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: taskctl tasks list|create|get|update|delete")
	}
	sub, args := args[0], args[1:]
	switch sub {
	case "list", "ls":
		return runTaskList(ctx, c, args)
	case "create", "add":
		return runTaskCreate(ctx, c, args)
	case "get", "show":
		return runTaskGet(ctx, c, args)
	case "update", "edit":
		return runTaskUpdate(ctx, c, args)
	case "delete", "rm":
		return runTaskDelete(ctx, c, args)
	default:
		return fmt.Errorf("unknown tasks command %q", sub)
	}
}

func runTaskList(ctx context.Context, c *cli, args []string) error {
	if err := newFlagSet(c, "tasks list").Parse(args); err != nil {
		return err
	}
	var tasks []task.Task
	err := c.authorized(ctx, func(token string) error {
		var err error
		tasks, err = c.api.ListTasks(ctx, token)
		return err
	})
	if err != nil {
		return err
	}
	return c.out.tasks(tasks)
}

func runTaskCreate(ctx context.Context, c *cli, args []string) error {
	var title, description string
	fs := newFlagSet(c, "tasks create")
	fs.StringVar(&title, "title", "", "task title")
	fs.StringVar(&description, "description", "", "optional description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req := task.CreateRequest{Title: title}
	if fs.Changed("description") {
		req.Description = &description
	}
	var created task.Task
	err := c.authorized(ctx, func(token string) error {
		var err error
		created, err = c.api.CreateTask(ctx, token, req)
		return err
	})
	if err != nil {
		return err
	}
	return c.out.task(created)
}

func runTaskGet(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet(c, "tasks get")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := taskID(fs.Args())
	if err != nil {
		return err
	}
	var found task.Task
	err = c.authorized(ctx, func(token string) error {
		var err error
		found, err = c.api.GetTask(ctx, token, id)
		return err
	})
	if err != nil {
		return err
	}
	return c.out.task(found)
}

func runTaskUpdate(ctx context.Context, c *cli, args []string) error {
	var title, description, status string
	fs := newFlagSet(c, "tasks update")
	fs.StringVar(&title, "title", "", "new title")
	fs.StringVar(&description, "description", "", "new description")
	fs.StringVar(&status, "status", "", "pending, in_progress or completed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := taskID(fs.Args())
	if err != nil {
		return err
	}
	var req task.UpdateRequest
	if fs.Changed("title") {
		req.Title = &title
	}
	if fs.Changed("description") {
		req.Description = &description
	}
	if fs.Changed("status") {
		req.Status = &status
	}
	var updated task.Task
	err = c.authorized(ctx, func(token string) error {
		var err error
		updated, err = c.api.UpdateTask(ctx, token, id, req)
		return err
	})
	if err != nil {
		return err
	}
	return c.out.task(updated)
}

func runTaskDelete(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet(c, "tasks delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := taskID(fs.Args())
	if err != nil {
		return err
	}
	err = c.authorized(ctx, func(token string) error {
		return c.api.DeleteTask(ctx, token, id)
	})
	if err != nil {
		return err
	}
	c.out.linef("deleted task %d", id)
	return nil
}

// authorized refreshes the token if needed and runs call with it. A 401 from
// the service ends the local session.
func (c *cli) authorized(ctx context.Context, call func(token string) error) error {
	token, err := c.session.MaybeRefresh(ctx)
	if err != nil {
		return describe(err)
	}
	err = call(token)
	if apiclient.IsUnauthorized(err) {
		if logoutErr := c.session.Logout(ctx); logoutErr != nil {
			return logoutErr
		}
		return describe(session.ErrSessionExpired)
	}
	return describe(err)
}

func taskID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one task id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", args[0])
	}
	return id, nil
}

// describe turns client errors into messages fit for a terminal.
func describe(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, session.ErrNoSession):
		return errors.New("not logged in, run taskctl login")
	case errors.Is(err, session.ErrSessionExpired):
		return errors.New("session expired, run taskctl login")
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		msg := apiErr.Message
		for _, field := range slices.Sorted(maps.Keys(apiErr.Fields)) {
			for _, p := range apiErr.Fields[field] {
				msg += fmt.Sprintf("\n  %s: %s", field, p)
			}
		}
		return errors.New(msg)
	}
	return err
}
