// Package storage defines the durable-record abstraction behind the session.
package storage

// Provider is the save/load capability pair for a single durable record.
type Provider interface {
	// Load returns the raw bytes of the record. A missing record reports
	// fs.ErrNotExist.
	Load() ([]byte, error)
	// Save atomically replaces the record with data; readers never observe
	// a partial write.
	Save(data []byte) error
	// Clear removes the record. Clearing an absent record is not an error.
	Clear() error
}
