package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/xraph/eventdesk/event"
	"github.com/xraph/eventdesk/id"
	"github.com/xraph/eventdesk/journal"
	"github.com/xraph/eventdesk/listing"
)

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"list":    cmdList,
	"get":     cmdGet,
	"create":  cmdCreate,
	"update":  cmdUpdate,
	"delete":  cmdDelete,
	"whoami":  cmdWhoami,
	"history": cmdHistory,
	"browse":  cmdBrowse,
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func parseID(fs *flag.FlagSet) (int64, error) {
	if fs.NArg() != 1 {
		return 0, fmt.Errorf("%s: expected one event id", fs.Name())
	}
	n, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s: invalid event id %q", fs.Name(), fs.Arg(0))
	}
	return n, nil
}

func cmdList(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("list")
	q := a.desk.List().Query()
	search := fs.String("search", "", "search text")
	typ := fs.String("type", "", "event type filter")
	orderBy := fs.String("order-by", q.OrderBy, "sort field")
	direction := fs.String("direction", string(q.OrderDirection), "sort direction: asc or desc")
	page := fs.Int("page", 1, "page number")
	perPage := fs.Int("per-page", q.PerPage, "events per page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	q.Search = *search
	q.OrderBy = *orderBy
	q.Page = *page
	q.PerPage = *perPage
	if *typ != "" {
		t, err := event.ParseType(*typ)
		if err != nil {
			return err
		}
		q.Type = t
	}
	dir, err := listing.ParseDirection(*direction)
	if err != nil {
		return err
	}
	q.OrderDirection = dir

	ctrl := a.desk.List()
	ctrl.SetQuery(q)
	if err := ctrl.FetchEvents(ctx); err != nil {
		return err
	}

	snap := ctrl.Snapshot()
	if a.json {
		return printJSON(a.out, newListView(snap))
	}
	return printEvents(a.out, snap.Events, snap.Pagination)
}

func cmdGet(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("get")
	if err := fs.Parse(args); err != nil {
		return err
	}
	eventID, err := parseID(fs)
	if err != nil {
		return err
	}

	e, err := a.desk.List().OpenEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if a.json {
		return printJSON(a.out, e)
	}
	return printEvent(a.out, e)
}

// inputFlags binds the editable event fields to fs.
type inputFlags struct {
	title       *string
	description *string
	typ         *string
	priority    *int
}

func bindInput(fs *flag.FlagSet, in event.Input) inputFlags {
	return inputFlags{
		title:       fs.String("title", in.Title, "event title"),
		description: fs.String("description", in.Description, "event description"),
		typ:         fs.String("type", string(in.Type), "event type: crosspromo, liveops, app, ads"),
		priority:    fs.Int("priority", in.Priority, "priority 1-10"),
	}
}

func (f inputFlags) input() event.Input {
	return event.Input{
		Title:       *f.title,
		Description: *f.description,
		Type:        event.Type(*f.typ),
		Priority:    *f.priority,
	}
}

func cmdCreate(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("create")
	fields := bindInput(fs, event.Input{Type: event.TypeLiveOps, Priority: event.MinPriority})
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := a.desk.CreateEvent(ctx, fields.input())
	if err != nil {
		return err
	}
	if a.json {
		return printJSON(a.out, e)
	}
	_, err = fmt.Fprintf(a.out, "created event %d\n", e.ID)
	return err
}

func cmdUpdate(ctx context.Context, a *app, args []string) error {
	// Defaults are unknown until the event is loaded, so parse twice: once
	// to find the id, then over the loaded values.
	pre := a.flagSet("update")
	pre.SetOutput(io.Discard)
	bindInput(pre, event.Input{})
	if err := pre.Parse(args); err != nil {
		return err
	}
	eventID, err := parseID(pre)
	if err != nil {
		return err
	}

	e, err := a.desk.Events().Get(ctx, eventID)
	if err != nil {
		return err
	}

	fs := a.flagSet("update")
	fields := bindInput(fs, e.Input())
	if err := fs.Parse(args); err != nil {
		return err
	}
	e.Apply(fields.input())

	updated, err := a.desk.UpdateEvent(ctx, e)
	if err != nil {
		return err
	}
	if a.json {
		return printJSON(a.out, updated)
	}
	_, err = fmt.Fprintf(a.out, "updated event %d\n", updated.ID)
	return err
}

func cmdDelete(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	eventID, err := parseID(fs)
	if err != nil {
		return err
	}

	if err := a.desk.Events().Delete(ctx, eventID); err != nil {
		return err
	}
	if a.json {
		return printJSON(a.out, map[string]int64{"deleted": eventID})
	}
	_, err = fmt.Fprintf(a.out, "deleted event %d\n", eventID)
	return err
}

func cmdWhoami(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("whoami")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ident := a.desk.Identity().Snapshot()
	if a.json {
		return printJSON(a.out, ident)
	}
	return printIdentity(a.out, ident)
}

func cmdHistory(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("history")
	action := fs.String("action", "", "only entries for this action: create, update, delete")
	offset := fs.Int("offset", 0, "entries to skip")
	limit := fs.Int("limit", 20, "maximum entries")
	entryID := fs.String("id", "", "show a single entry")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *entryID != "" {
		if a.journal == nil {
			return fmt.Errorf("history: no journal configured")
		}
		jid, err := id.ParseJournalID(*entryID)
		if err != nil {
			return err
		}
		e, err := a.journal.Get(ctx, jid)
		if err != nil {
			return err
		}
		if a.json {
			return printJSON(a.out, e)
		}
		return printEntries(a.out, []*journal.Entry{e})
	}

	opts := journal.ListOpts{Offset: *offset, Limit: *limit}
	if *action != "" {
		act, err := journal.ParseAction(*action)
		if err != nil {
			return err
		}
		opts.Action = act
	}

	entries, err := a.desk.History(ctx, opts)
	if err != nil {
		return err
	}
	if a.json {
		return printJSON(a.out, entries)
	}
	return printEntries(a.out, entries)
}
