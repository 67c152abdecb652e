package conflict

import (
	"context"

	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

type ConflictService interface {
	List(ctx context.Context, sess session.Session, filter ConflictFilter) (ListConflictResponse, error)
}
