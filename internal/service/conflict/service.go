package conflict

import (
	"context"
	"fmt"
	"math"

	"github.com/timeguard/timeguard-api/internal/domain/conflict"
	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

type ConflictServiceImpl struct {
	conflict.ConflictRepository
}

func NewConflictService(conflictRepo conflict.ConflictRepository) conflict.ConflictService {
	return &ConflictServiceImpl{ConflictRepository: conflictRepo}
}

// List implements conflict.ConflictService.
func (s *ConflictServiceImpl) List(ctx context.Context, sess session.Session, filter conflict.ConflictFilter) (conflict.ListConflictResponse, error) {
	if !profile.HasPermission(sess.Role, profile.PermissionConflictView) {
		return conflict.ListConflictResponse{}, profile.ErrManagerAccessRequired
	}
	if err := filter.Validate(); err != nil {
		return conflict.ListConflictResponse{}, err
	}

	conflicts, total, err := s.ConflictRepository.List(ctx, filter)
	if err != nil {
		return conflict.ListConflictResponse{}, fmt.Errorf("failed to list conflicts: %w", err)
	}

	resp := conflict.ListConflictResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Conflicts:  make([]conflict.ConflictResponse, 0, len(conflicts)),
	}
	for _, c := range conflicts {
		resp.Conflicts = append(resp.Conflicts, conflict.ToResponse(c))
	}
	return resp, nil
}
