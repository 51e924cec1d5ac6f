package usecase

import "context"

// Stats counts the outcomes of one ingestion batch. Processed counts records
// seen, valid/invalid the two validation outcomes, inserted newly created
// documents (updates are successes too, they just don't increment it), and
// error covers unreadable files, failed coordinate projection and failed
// store writes.
type Stats struct {
	Processed int `json:"processed"`
	Valid     int `json:"valid"`
	Invalid   int `json:"invalid"`
	Inserted  int `json:"inserted"`
	Error     int `json:"error"`
}

// Add accumulates another batch's counters into s.
func (s *Stats) Add(other Stats) {
	s.Processed += other.Processed
	s.Valid += other.Valid
	s.Invalid += other.Invalid
	s.Inserted += other.Inserted
	s.Error += other.Error
}

// IngestUsecase transforms batches of raw JSON records into persisted,
// query-ready entity documents, idempotently keyed on uri. Per-record
// failures are isolated: one bad record never aborts its siblings.
type IngestUsecase interface {
	// IngestFile processes one JSON file holding a single record or an
	// array of records. An unreadable or malformed file yields error=1
	// and processed=0.
	IngestFile(ctx context.Context, path string) Stats

	// IngestDirectory applies IngestFile to every .json file directly
	// under path (non-recursive) and sums the stats.
	IngestDirectory(ctx context.Context, path string) (Stats, error)

	// Clean drops the entire entity collection. Explicit pre-batch reset
	// only; never called implicitly.
	Clean(ctx context.Context) error

	// EnsureIndexes idempotently declares the query indexes.
	EnsureIndexes(ctx context.Context) error
}
