package state

import "context"

// Interface is what the app needs from the state store. Mock implements it
// in memory.
type Interface interface {
	SaveResume(r Resume)
	GetResume(ctx context.Context, cdn string) (*Resume, error)
	ClearResume(ctx context.Context, cdn string) error
	Flush(ctx context.Context) error
	StartPlay(ctx context.Context, e HistoryEntry) (int64, error)
	EndPlay(ctx context.Context, id int64, outcome Outcome, failure string) error
	History(ctx context.Context, limit int) ([]HistoryEntry, error)
	Close() error
}

var _ Interface = (*Manager)(nil)
