package analyses

import "context"

// Repo persists analysis records. Complete and Fail move a non-terminal record
// to a terminal state exactly once; later attempts return ErrAlreadyTerminal.
type Repo interface {
	Create(ctx context.Context, id, filename string, meta Meta) error
	Complete(ctx context.Context, id string, result Result) error
	Fail(ctx context.Context, id string, failure Failure) error
	GetByID(ctx context.Context, id string) (Record, error)
}
