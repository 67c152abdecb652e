package conflict

import "context"

type ConflictRepository interface {
	Create(ctx context.Context, c Conflict) (Conflict, error)
	List(ctx context.Context, filter ConflictFilter) ([]Conflict, int64, error)
}
