package mongo

import "testing"

func TestDatabaseURI(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		db   string
		want string
	}{
		{"default database", "mongodb://localhost:27017", "", "mongodb://localhost:27017/eventdesk"},
		{"named database", "mongodb://localhost:27017/", "journal", "mongodb://localhost:27017/journal"},
		{"uri path wins", "mongodb://localhost:27017/ops", "journal", "mongodb://localhost:27017/ops"},
		{"keeps query", "mongodb://localhost:27017/?replicaSet=rs0", "journal", "mongodb://localhost:27017/journal?replicaSet=rs0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := databaseURI(tt.uri, tt.db)
			if err != nil {
				t.Fatalf("databaseURI: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := databaseURI("", "journal"); err == nil {
		t.Fatal("expected error for empty uri")
	}
}
