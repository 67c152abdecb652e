package onsite

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timeguard/timeguard-api/internal/domain/assignment"
	"github.com/timeguard/timeguard-api/internal/domain/onsite"
	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/domain/site"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
	"github.com/timeguard/timeguard-api/internal/pkg/sse"
	"github.com/timeguard/timeguard-api/internal/service/servicetest"
)

const (
	managerID  = "0190a0b0-0000-7000-8000-000000000101"
	employeeID = "0190a0b0-0000-7000-8000-000000000102"
	strangerID = "0190a0b0-0000-7000-8000-000000000103"
	siteID     = "0190a0b0-0000-7000-8000-000000000104"
	orphanID   = "0190a0b0-0000-7000-8000-000000000105"
)

var (
	managerSess  = session.Session{UserID: managerID, Role: session.RoleManager}
	employeeSess = session.Session{UserID: employeeID, Role: session.RoleEmployee}
	strangerSess = session.Session{UserID: strangerID, Role: session.RoleEmployee}
)

type fixture struct {
	svc      onsite.OnsiteService
	storage  *servicetest.Storage
	photos   *servicetest.Photos
	messages *servicetest.Messages
	hub      *sse.Hub
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mgr := managerID
	assignments := servicetest.NewAssignments(
		assignment.Assignment{EmployeeID: employeeID, SiteID: siteID, ArrivalTime: "09:00", EndTime: "17:00"},
		assignment.Assignment{EmployeeID: employeeID, SiteID: orphanID, ArrivalTime: "09:00", EndTime: "17:00"},
	)
	sites := servicetest.NewSites(assignments,
		site.Site{ID: siteID, Name: "Warehouse", ManagerID: &mgr, IsActive: true, Timezone: "UTC"},
		site.Site{ID: orphanID, Name: "Unmanaged", IsActive: true, Timezone: "UTC"},
	)
	f := fixture{
		storage:  servicetest.NewStorage(),
		photos:   servicetest.NewPhotos(),
		messages: servicetest.NewMessages(),
		hub:      sse.NewHub(),
	}
	svc := NewOnsiteService(f.photos, f.messages, sites, assignments, f.storage, f.hub).(*OnsiteServiceImpl)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	f.svc = svc
	return f
}

// noisyPNG builds an image that does not compress well.
func noisyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	seed := uint32(7)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			seed = seed*1664525 + 1013904223
			img.Set(x, y, color.RGBA{uint8(seed >> 24), uint8(seed >> 16), uint8(seed >> 8), 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestUploadPhoto_StoresCompressedJPEG(t *testing.T) {
	f := newFixture(t)
	raw := noisyPNG(t, 800, 600)

	resp, err := f.svc.UploadPhoto(context.Background(), employeeSess, onsite.UploadPhotoRequest{
		SiteID: siteID, Caption: "Loading dock", Filename: "dock.png", Size: int64(len(raw)), File: bytes.NewReader(raw),
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.PhotoURL, "https://files.test/sites/"+siteID+"/2026-03-10/"))
	assert.True(t, strings.HasSuffix(resp.PhotoURL, ".jpg"))
	assert.Equal(t, "Loading dock", resp.Caption)

	require.Len(t, f.storage.Files, 1)
	for path, data := range f.storage.Files {
		assert.Equal(t, "image/jpeg", f.storage.Types[path])
		assert.LessOrEqual(t, len(data), photoMaxBytes)
		_, err := jpeg.Decode(bytes.NewReader(data))
		assert.NoError(t, err)
	}
}

func TestUploadPhoto_RejectsNonImage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UploadPhoto(context.Background(), employeeSess, onsite.UploadPhotoRequest{
		SiteID: siteID, Filename: "fake.jpg", File: strings.NewReader("not an image"),
	})

	assert.ErrorIs(t, err, onsite.ErrInvalidPhoto)
	assert.Empty(t, f.storage.Files)
}

func TestUploadPhoto_RequiresAssignment(t *testing.T) {
	f := newFixture(t)
	raw := noisyPNG(t, 10, 10)

	_, err := f.svc.UploadPhoto(context.Background(), strangerSess, onsite.UploadPhotoRequest{
		SiteID: siteID, Filename: "a.png", File: bytes.NewReader(raw),
	})

	assert.ErrorIs(t, err, assignment.ErrSiteNotAssigned)
}

func TestCompressPhoto_DownscalesLargeImages(t *testing.T) {
	out, err := compressPhoto(noisyPNG(t, 2400, 1200))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), photoMaxEdge)
	assert.LessOrEqual(t, len(out), photoMaxBytes)
}

func TestListPhotos(t *testing.T) {
	f := newFixture(t)
	raw := noisyPNG(t, 20, 20)
	_, err := f.svc.UploadPhoto(context.Background(), employeeSess, onsite.UploadPhotoRequest{
		SiteID: siteID, Filename: "a.png", File: bytes.NewReader(raw),
	})
	require.NoError(t, err)

	photos, err := f.svc.ListPhotos(context.Background(), managerSess, siteID)

	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, employeeID, photos[0].EmployeeID)
}

func TestSendMessage_NotifiesManager(t *testing.T) {
	f := newFixture(t)
	ch, cleanup := f.hub.Subscribe(managerID, session.RoleManager)
	defer cleanup()

	resp, err := f.svc.SendMessage(context.Background(), employeeSess, onsite.SendMessageRequest{SiteID: siteID, Message: "Gate is locked"})

	require.NoError(t, err)
	assert.Equal(t, managerID, resp.ManagerID)
	assert.Equal(t, "pending", resp.Status)
	ev := <-ch
	assert.Equal(t, sse.EventSiteMessage, ev.Event)
}

func TestSendMessage_NoSiteManager(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SendMessage(context.Background(), employeeSess, onsite.SendMessageRequest{SiteID: orphanID, Message: "hello"})

	assert.ErrorIs(t, err, onsite.ErrNoSiteManager)
}

func TestMessages_ListAndResolve(t *testing.T) {
	f := newFixture(t)
	sent, err := f.svc.SendMessage(context.Background(), employeeSess, onsite.SendMessageRequest{SiteID: siteID, Message: "Need ladder"})
	require.NoError(t, err)

	_, err = f.svc.ListMessages(context.Background(), employeeSess, onsite.MessageFilter{})
	assert.ErrorIs(t, err, profile.ErrManagerAccessRequired)

	other := session.Session{UserID: strangerID, Role: session.RoleManager}
	list, err := f.svc.ListMessages(context.Background(), other, onsite.MessageFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.ResolveMessage(context.Background(), other, sent.ID)
	assert.ErrorIs(t, err, onsite.ErrNotMessageRecipient)

	resolved, err := f.svc.ResolveMessage(context.Background(), managerSess, sent.ID)
	require.NoError(t, err)
	assert.Equal(t, "resolved", resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)

	_, err = f.svc.ResolveMessage(context.Background(), managerSess, sent.ID)
	assert.ErrorIs(t, err, onsite.ErrMessageAlreadyResolved)
}
