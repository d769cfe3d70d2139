// Package eventdesk is the client core of an events admin tool.
//
// eventdesk is a library, not a UI. It talks to a remote events API, keeps
// the state a presentation layer renders, and reports failures on a side
// channel instead of storing them.
//
// Key features:
//   - One HTTP gateway that stamps the caller IP on every request and turns
//     failed responses into *httpclient.APIError values
//   - Lazy, shared public-IP resolution and best-effort ads authorization
//   - Event CRUD over the API, optionally journaled to memory, SQLite, Redis
//     or MongoDB
//   - A shared list controller with debounced search, explicit fetches for
//     the other axes, supersession of stale responses and derived pagination
//   - Error notifications to logs, the desktop or a Redis channel
//   - Prometheus metrics, OpenTelemetry spans and per-route rate limiting
//
// Quick start:
//
//	d, err := eventdesk.New(
//	    eventdesk.WithBaseURL("https://api.example.com"),
//	    eventdesk.WithNotifier(notify.NewLog(nil)),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer d.Close()
//
//	d.Start(ctx)
//
//	list := d.List()
//	list.SetType(event.TypeLiveOps)
//	if err := list.FetchEvents(ctx); err != nil {
//	    // already reported through the notifier
//	}
//	for _, e := range list.Events() {
//	    fmt.Println(e.ID, e.Title)
//	}
package eventdesk
