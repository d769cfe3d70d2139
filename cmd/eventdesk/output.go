package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/xraph/eventdesk/event"
	"github.com/xraph/eventdesk/identity"
	"github.com/xraph/eventdesk/journal"
	"github.com/xraph/eventdesk/listing"
)

const timeLayout = "2006-01-02 15:04"

// listView is the JSON form of one page of the list.
type listView struct {
	Events     []event.Event      `json:"events"`
	Pagination listing.Pagination `json:"pagination"`
}

func newListView(s listing.Snapshot) listView {
	return listView{Events: s.Events, Pagination: s.Pagination}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printEvents(w io.Writer, events []event.Event, p listing.Pagination) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tPRIORITY\tUPDATED")
	for _, e := range events {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", e.ID, e.Title, e.Type, e.Priority, formatTime(e.UpdatedAt))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "page %d of %d, %d events\n", p.Page, p.TotalPages, p.TotalResults)
	return err
}

func printEvent(w io.Writer, e *event.Event) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "id:\t%d\n", e.ID)
	fmt.Fprintf(tw, "title:\t%s\n", e.Title)
	fmt.Fprintf(tw, "type:\t%s\n", e.Type)
	fmt.Fprintf(tw, "priority:\t%d\n", e.Priority)
	fmt.Fprintf(tw, "description:\t%s\n", e.Description)
	fmt.Fprintf(tw, "created:\t%s\n", formatTime(e.CreatedAt))
	fmt.Fprintf(tw, "updated:\t%s\n", formatTime(e.UpdatedAt))
	return tw.Flush()
}

func printEntries(w io.Writer, entries []*journal.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tACTION\tEVENT\tTITLE\tIP\tRESULT")
	for _, e := range entries {
		result := "ok"
		if !e.Succeeded() {
			result = "failed: " + e.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			e.ID, formatTime(e.CreatedAt), e.Action, e.EventID, e.Title, e.IP, result)
	}
	return tw.Flush()
}

func printIdentity(w io.Writer, id identity.Identity) error {
	ip := id.IP
	if !id.Resolved {
		ip = "(unresolved)"
	}
	_, err := fmt.Fprintf(w, "ip: %s\nads authorized: %t\n", ip, id.AdsAuthorized)
	return err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}
