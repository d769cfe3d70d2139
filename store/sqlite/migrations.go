package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the eventdesk journal (SQLite).
var Migrations = migrate.NewGroup("eventdesk")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_eventdesk_journal",
			Version: "20260301000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS eventdesk_journal (
    id          TEXT PRIMARY KEY,
    action      TEXT NOT NULL,
    event_id    INTEGER NOT NULL DEFAULT 0,
    title       TEXT NOT NULL DEFAULT '',
    ip          TEXT NOT NULL DEFAULT '',
    error       TEXT NOT NULL DEFAULT '',
    created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_eventdesk_journal_created ON eventdesk_journal (created_at);
CREATE INDEX IF NOT EXISTS idx_eventdesk_journal_action ON eventdesk_journal (action, created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS eventdesk_journal`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "index_eventdesk_journal_event",
			Version: "20260301000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE INDEX IF NOT EXISTS idx_eventdesk_journal_event ON eventdesk_journal (event_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP INDEX IF EXISTS idx_eventdesk_journal_event`)
				return err
			},
		},
	)
}
