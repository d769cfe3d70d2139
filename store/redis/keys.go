package redis

// Key prefix for primary entry storage.
const prefixEntry = "eventdesk:jrn:"

// Key prefixes for sorted set indexes.
const (
	zEntryAll    = "eventdesk:z:jrn:all"
	zEntryAction = "eventdesk:z:jrn:action:" // + action
)

// entryKey returns the primary key for an entry.
func entryKey(entryID string) string {
	return prefixEntry + entryID
}

// actionKey returns the index key for one action.
func actionKey(action string) string {
	return zEntryAction + action
}
