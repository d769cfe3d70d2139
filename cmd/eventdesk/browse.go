package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/xraph/eventdesk/event"
	"github.com/xraph/eventdesk/listing"
	"github.com/xraph/eventdesk/notify"
)

const browseHelp = `type text to search, or:
  :type <type|all>      filter by type
  :order <field> [asc|desc]
  :page <n>   :next   :prev   :per <n>
  :open <id>            show one event
  :clear                clear the search
  :quit
`

// browser renders list updates and notifications for the browse command.
type browser struct {
	a    *app
	ctrl *listing.Controller

	mu      sync.Mutex
	loading bool
}

func cmdBrowse(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("browse")
	if err := fs.Parse(args); err != nil {
		return err
	}

	b := &browser{a: a, ctrl: a.desk.List()}
	unsubscribe := b.ctrl.Subscribe(b.render)
	defer unsubscribe()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.forwardNotifications(done)
	}()
	defer func() {
		close(done)
		wg.Wait()
	}()

	b.fetch(ctx)

	sc := bufio.NewScanner(a.in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if quit := b.handle(ctx, strings.TrimSpace(sc.Text())); quit {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}

	if _, err := b.ctrl.FlushSearch(ctx); err != nil && !ignorable(err) {
		return err
	}
	return nil
}

// handle runs one input line and reports whether browsing should stop.
func (b *browser) handle(ctx context.Context, line string) bool {
	if !strings.HasPrefix(line, ":") {
		if line != "" {
			b.ctrl.SetSearch(line)
		}
		return false
	}

	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "q", "quit":
		return true
	case "help":
		b.printf("%s", browseHelp)
	case "clear":
		b.ctrl.SetSearch("")
	case "type":
		if len(args) != 1 {
			b.printf("usage: :type <type|all>\n")
			return false
		}
		if args[0] == "all" {
			b.ctrl.SetType("")
		} else {
			t, err := event.ParseType(args[0])
			if err != nil {
				b.printf("%v\n", err)
				return false
			}
			b.ctrl.SetType(t)
		}
		b.ctrl.SetPage(1)
		b.fetch(ctx)
	case "order":
		if len(args) < 1 || len(args) > 2 {
			b.printf("usage: :order <field> [asc|desc]\n")
			return false
		}
		if len(args) == 2 {
			dir, err := listing.ParseDirection(args[1])
			if err != nil {
				b.printf("%v\n", err)
				return false
			}
			b.ctrl.SetOrderDirection(dir)
		}
		b.ctrl.SetOrderBy(args[0])
		b.fetch(ctx)
	case "page", "per":
		if len(args) != 1 {
			b.printf("usage: :%s <n>\n", cmd)
			return false
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			b.printf("invalid number %q\n", args[0])
			return false
		}
		if cmd == "page" {
			b.ctrl.SetPage(n)
		} else {
			b.ctrl.SetPerPage(n)
		}
		b.fetch(ctx)
	case "next", "prev":
		p := b.ctrl.Pagination()
		switch {
		case cmd == "next" && p.HasNext():
			b.ctrl.SetPage(p.Page + 1)
		case cmd == "prev" && p.HasPrev():
			b.ctrl.SetPage(p.Page - 1)
		default:
			b.printf("no %s page\n", cmd)
			return false
		}
		b.fetch(ctx)
	case "open":
		if len(args) != 1 {
			b.printf("usage: :open <id>\n")
			return false
		}
		eventID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			b.printf("invalid event id %q\n", args[0])
			return false
		}
		e, err := b.ctrl.OpenEvent(ctx, eventID)
		if err != nil {
			b.printf("! %v\n", err)
			return false
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.a.json {
			_ = printJSON(b.a.out, e)
		} else {
			_ = printEvent(b.a.out, e)
		}
	default:
		b.printf("unknown command :%s (try :help)\n", cmd)
	}
	return false
}

// fetch loads the current query. Failures surface as notifications.
func (b *browser) fetch(ctx context.Context) {
	if err := b.ctrl.FetchEvents(ctx); err != nil && !ignorable(err) {
		b.a.logger.DebugContext(ctx, "browse: fetch failed", "error", err)
	}
}

// render prints the list each time a fetch settles successfully.
func (b *browser) render(s listing.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	wasLoading := b.loading
	b.loading = s.Loading()
	if !wasLoading || s.State != listing.StateIdle {
		return
	}

	if b.a.json {
		_ = printJSON(b.a.out, newListView(s))
		return
	}
	if s.Query.Search != "" {
		fmt.Fprintf(b.a.out, "search: %q\n", s.Query.Search)
	}
	_ = printEvents(b.a.out, s.Events, s.Pagination)
}

func (b *browser) forwardNotifications(done <-chan struct{}) {
	for {
		select {
		case n := <-b.a.recorder.C():
			b.printNotification(n)
		case <-done:
			for {
				select {
				case n := <-b.a.recorder.C():
					b.printNotification(n)
				default:
					return
				}
			}
		}
	}
}

func (b *browser) printNotification(n notify.Notification) {
	b.printf("! %s: %s\n", n.Summary, n.Detail)
}

func (b *browser) printf(format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintf(b.a.out, format, args...)
}

func ignorable(err error) bool {
	return errors.Is(err, listing.ErrSuperseded) || errors.Is(err, listing.ErrClosed)
}
