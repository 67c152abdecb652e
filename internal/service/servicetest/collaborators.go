package servicetest

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/timeguard/timeguard-api/internal/pkg/email"
	"github.com/timeguard/timeguard-api/internal/pkg/storage"
)

// Tx runs fn directly. Repositories in this package are not transactional,
// so it only records how often a transaction was requested.
type Tx struct {
	mu    sync.Mutex
	Calls int
}

func (t *Tx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	t.Calls++
	t.mu.Unlock()
	return fn(ctx)
}

// Mailer records every email it is asked to send.
type Mailer struct {
	mu          sync.Mutex
	Invitations []email.InvitationEmail
	Approvals   []email.EnrollmentApprovedEmail
	Variance    []email.VarianceAlertEmail
	Err         error
}

func (m *Mailer) SendInvitation(_ context.Context, data email.InvitationEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invitations = append(m.Invitations, data)
	return m.Err
}

func (m *Mailer) SendEnrollmentApproved(_ context.Context, data email.EnrollmentApprovedEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Approvals = append(m.Approvals, data)
	return m.Err
}

func (m *Mailer) SendVarianceAlert(_ context.Context, data email.VarianceAlertEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Variance = append(m.Variance, data)
	return m.Err
}

// Storage keeps uploaded files in memory.
type Storage struct {
	mu      sync.Mutex
	Files   map[string][]byte
	Types   map[string]string
	BaseURL string
}

func NewStorage() *Storage {
	return &Storage{Files: make(map[string][]byte), Types: make(map[string]string), BaseURL: "https://files.test"}
}

func (s *Storage) Upload(_ context.Context, file io.Reader, path string, contentType string) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Files[path] = data
	s.Types[path] = contentType
	return path, nil
}

func (s *Storage) Download(_ context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.Files[path]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Storage) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Files, path)
	return nil
}

func (s *Storage) GetURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return s.BaseURL + "/" + path, nil
}

func (s *Storage) Exists(_ context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Files[path]
	return ok, nil
}

// Geocoder returns fixed coordinates or Err.
type Geocoder struct {
	Lat, Lon float64
	Err      error
	Calls    int
}

func (g *Geocoder) Geocode(_ context.Context, _ string) (float64, float64, error) {
	g.Calls++
	if g.Err != nil {
		return 0, 0, g.Err
	}
	return g.Lat, g.Lon, nil
}
