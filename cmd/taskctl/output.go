package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/yanqian/taskhub/internal/domain/auth"
	"github.com/yanqian/taskhub/internal/domain/task"
)

type printer struct {
	w    io.Writer
	json bool
}

func (p *printer) linef(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) printJSON(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) user(u auth.UserView) error {
	if p.json {
		return p.printJSON(u)
	}
	p.linef("id:      %d", u.ID)
	p.linef("name:    %s", u.Name)
	p.linef("email:   %s", u.Email)
	p.linef("created: %s", u.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func (p *printer) task(t task.Task) error {
	if p.json {
		return p.printJSON(t)
	}
	p.linef("id:          %d", t.ID)
	p.linef("title:       %s", t.Title)
	p.linef("description: %s", deref(t.Description))
	p.linef("status:      %s", t.Status)
	p.linef("updated:     %s", t.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func (p *printer) tasks(list []task.Task) error {
	if p.json {
		return p.printJSON(list)
	}
	if len(list) == 0 {
		p.linef("no tasks")
		return nil
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE")
	for _, t := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", t.ID, t.Status, t.Title)
	}
	return tw.Flush()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
