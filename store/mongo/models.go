package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/eventdesk/id"
	"github.com/xraph/eventdesk/journal"
)

// --- Journal models ---

type entryModel struct {
	grove.BaseModel `grove:"table:eventdesk_journal"`

	ID        string    `grove:"id,pk"      bson:"_id"`
	Action    string    `grove:"action"     bson:"action"`
	EventID   int64     `grove:"event_id"   bson:"event_id"`
	Title     string    `grove:"title"      bson:"title"`
	IP        string    `grove:"ip"         bson:"ip"`
	Error     string    `grove:"error"      bson:"error"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
}

func toEntryModel(e *journal.Entry) *entryModel {
	return &entryModel{
		ID:        e.ID.String(),
		Action:    string(e.Action),
		EventID:   e.EventID,
		Title:     e.Title,
		IP:        e.IP,
		Error:     e.Error,
		CreatedAt: e.CreatedAt.UTC(),
	}
}

func fromEntryModel(m *entryModel) (*journal.Entry, error) {
	entryID, err := id.ParseJournalID(m.ID)
	if err != nil {
		return nil, err
	}
	return &journal.Entry{
		ID:        entryID,
		Action:    journal.Action(m.Action),
		EventID:   m.EventID,
		Title:     m.Title,
		IP:        m.IP,
		Error:     m.Error,
		CreatedAt: m.CreatedAt.UTC(),
	}, nil
}
