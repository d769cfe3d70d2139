package sqlite

import (
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/eventdesk/id"
	"github.com/xraph/eventdesk/journal"
)

type journalModel struct {
	grove.BaseModel `grove:"table:eventdesk_journal"`

	ID        string `grove:"id,pk"`
	Action    string `grove:"action"`
	EventID   int64  `grove:"event_id"`
	Title     string `grove:"title"`
	IP        string `grove:"ip"`
	Error     string `grove:"error"`
	CreatedAt int64  `grove:"created_at"` // unix nanoseconds
}

func toJournalModel(e *journal.Entry) *journalModel {
	return &journalModel{
		ID:        e.ID.String(),
		Action:    string(e.Action),
		EventID:   e.EventID,
		Title:     e.Title,
		IP:        e.IP,
		Error:     e.Error,
		CreatedAt: e.CreatedAt.UnixNano(),
	}
}

func fromJournalModel(m *journalModel) (*journal.Entry, error) {
	entryID, err := id.ParseJournalID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse journal ID %q: %w", m.ID, err)
	}
	return &journal.Entry{
		ID:        entryID,
		Action:    journal.Action(m.Action),
		EventID:   m.EventID,
		Title:     m.Title,
		IP:        m.IP,
		Error:     m.Error,
		CreatedAt: time.Unix(0, m.CreatedAt).UTC(),
	}, nil
}
