package onsite

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/timeguard/timeguard-api/internal/domain/assignment"
	"github.com/timeguard/timeguard-api/internal/domain/onsite"
	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/domain/site"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
	"github.com/timeguard/timeguard-api/internal/pkg/sse"
	"github.com/timeguard/timeguard-api/internal/pkg/storage"
)

// photoURLExpiry bounds presigned photo links on private buckets.
const photoURLExpiry = time.Hour

type OnsiteServiceImpl struct {
	photos      onsite.PhotoRepository
	messages    onsite.MessageRepository
	sites       site.SiteRepository
	assignments assignment.AssignmentRepository
	storage     storage.FileStorage
	hub         *sse.Hub
	now         func() time.Time
}

func NewOnsiteService(
	photoRepo onsite.PhotoRepository,
	messageRepo onsite.MessageRepository,
	siteRepo site.SiteRepository,
	assignmentRepo assignment.AssignmentRepository,
	fileStorage storage.FileStorage,
	hub *sse.Hub,
) onsite.OnsiteService {
	return &OnsiteServiceImpl{
		photos:      photoRepo,
		messages:    messageRepo,
		sites:       siteRepo,
		assignments: assignmentRepo,
		storage:     fileStorage,
		hub:         hub,
		now:         time.Now,
	}
}

// siteForCaller loads the site and checks the caller may post to it: managers and
// admins always, employees only while assigned.
func (s *OnsiteServiceImpl) siteForCaller(ctx context.Context, sess session.Session, siteID string) (site.Site, error) {
	st, err := s.sites.GetByID(ctx, siteID)
	if err != nil {
		return site.Site{}, err
	}
	if sess.IsManager() {
		return st, nil
	}

	assigned, err := s.assignments.IsAssigned(ctx, sess.UserID, st.ID, s.now().In(st.Location()))
	if err != nil {
		return site.Site{}, fmt.Errorf("failed to check assignment: %w", err)
	}
	if !assigned {
		return site.Site{}, assignment.ErrSiteNotAssigned
	}
	return st, nil
}

// UploadPhoto implements onsite.OnsiteService.
func (s *OnsiteServiceImpl) UploadPhoto(ctx context.Context, sess session.Session, req onsite.UploadPhotoRequest) (onsite.PhotoResponse, error) {
	if err := req.Validate(); err != nil {
		return onsite.PhotoResponse{}, err
	}
	st, err := s.siteForCaller(ctx, sess, req.SiteID)
	if err != nil {
		return onsite.PhotoResponse{}, err
	}

	buffer, err := io.ReadAll(io.LimitReader(req.File, onsite.MaxPhotoSize+1))
	if err != nil {
		return onsite.PhotoResponse{}, fmt.Errorf("failed to read photo: %w", err)
	}
	if len(buffer) > onsite.MaxPhotoSize {
		return onsite.PhotoResponse{}, onsite.ErrPhotoTooLarge
	}

	compressed, err := compressPhoto(buffer)
	if err != nil {
		slog.Warn("Rejected undecodable site photo", "site_id", st.ID, "filename", req.Filename, "error", err)
		return onsite.PhotoResponse{}, onsite.ErrInvalidPhoto
	}

	now := s.now().UTC()
	// sites/{siteID}/{date}/{uuid}.jpg
	key := path.Join("sites", st.ID, now.Format("2006-01-02"), uuid.NewString()+".jpg")
	stored, err := s.storage.Upload(ctx, bytes.NewReader(compressed), key, "image/jpeg")
	if err != nil {
		return onsite.PhotoResponse{}, fmt.Errorf("failed to upload site photo: %w", err)
	}

	photo, err := s.photos.Create(ctx, onsite.SitePhoto{
		SiteID:     st.ID,
		EmployeeID: sess.UserID,
		PhotoURL:   stored,
		Caption:    req.Caption,
		UploadDate: now,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
	})
	if err != nil {
		// Do not leave an orphaned object behind
		if delErr := s.storage.Delete(ctx, stored); delErr != nil {
			slog.Error("Failed to remove orphaned photo", "path", stored, "error", delErr)
		}
		return onsite.PhotoResponse{}, fmt.Errorf("failed to save site photo: %w", err)
	}

	slog.Info("Site photo uploaded", "photo_id", photo.ID, "site_id", st.ID, "bytes_in", len(buffer), "bytes_out", len(compressed))
	return s.photoResponse(ctx, photo), nil
}

func (s *OnsiteServiceImpl) photoResponse(ctx context.Context, p onsite.SitePhoto) onsite.PhotoResponse {
	url, err := s.storage.GetURL(ctx, p.PhotoURL, photoURLExpiry)
	if err != nil {
		slog.Warn("Failed to resolve photo URL", "photo_id", p.ID, "error", err)
		url = ""
	}
	return onsite.ToPhotoResponse(p, url)
}

// ListPhotos implements onsite.OnsiteService.
func (s *OnsiteServiceImpl) ListPhotos(ctx context.Context, sess session.Session, siteID string) ([]onsite.PhotoResponse, error) {
	st, err := s.siteForCaller(ctx, sess, siteID)
	if err != nil {
		return nil, err
	}

	photos, err := s.photos.ListBySite(ctx, st.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list site photos: %w", err)
	}

	resp := make([]onsite.PhotoResponse, 0, len(photos))
	for _, p := range photos {
		resp = append(resp, s.photoResponse(ctx, p))
	}
	return resp, nil
}

// SendMessage implements onsite.OnsiteService.
func (s *OnsiteServiceImpl) SendMessage(ctx context.Context, sess session.Session, req onsite.SendMessageRequest) (onsite.MessageResponse, error) {
	if err := req.Validate(); err != nil {
		return onsite.MessageResponse{}, err
	}
	st, err := s.siteForCaller(ctx, sess, req.SiteID)
	if err != nil {
		return onsite.MessageResponse{}, err
	}
	if st.ManagerID == nil || *st.ManagerID == "" {
		return onsite.MessageResponse{}, onsite.ErrNoSiteManager
	}

	msg, err := s.messages.Create(ctx, onsite.SiteMessage{
		SiteID:     st.ID,
		EmployeeID: sess.UserID,
		ManagerID:  *st.ManagerID,
		Message:    req.Message,
		Status:     onsite.MessagePending,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		return onsite.MessageResponse{}, fmt.Errorf("failed to send message: %w", err)
	}
	msg.SiteName = &st.Name

	resp := onsite.ToMessageResponse(msg)
	s.hub.Publish(msg.ManagerID, sse.Event{Event: sse.EventSiteMessage, Data: resp})

	slog.Info("Site message sent", "message_id", msg.ID, "site_id", st.ID, "manager_id", msg.ManagerID)
	return resp, nil
}

// ListMessages implements onsite.OnsiteService.
func (s *OnsiteServiceImpl) ListMessages(ctx context.Context, sess session.Session, filter onsite.MessageFilter) ([]onsite.MessageResponse, error) {
	if !profile.HasPermission(sess.Role, profile.PermissionMessageManage) {
		return nil, profile.ErrManagerAccessRequired
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if !sess.IsAdmin() {
		filter.ManagerID = &sess.UserID
	}

	messages, err := s.messages.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	resp := make([]onsite.MessageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, onsite.ToMessageResponse(m))
	}
	return resp, nil
}

// ResolveMessage implements onsite.OnsiteService.
func (s *OnsiteServiceImpl) ResolveMessage(ctx context.Context, sess session.Session, id string) (onsite.MessageResponse, error) {
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return onsite.MessageResponse{}, err
	}
	if !sess.IsAdmin() && msg.ManagerID != sess.UserID {
		return onsite.MessageResponse{}, onsite.ErrNotMessageRecipient
	}

	now := s.now().UTC()
	msg.ResolvedAt = &now
	resolved, err := s.messages.Resolve(ctx, msg)
	if err != nil {
		return onsite.MessageResponse{}, err
	}
	return onsite.ToMessageResponse(resolved), nil
}
