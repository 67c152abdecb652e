package invitation

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timeguard/timeguard-api/internal/config"
	"github.com/timeguard/timeguard-api/internal/domain/invitation"
	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
	"github.com/timeguard/timeguard-api/internal/service/servicetest"
	"golang.org/x/crypto/bcrypt"
)

const adminID = "0190a0b0-0000-7000-8000-0000000000aa"

var adminSess = session.Session{UserID: adminID, Email: "admin@example.com", Role: session.RoleAdmin}

type fixture struct {
	svc         *InvitationServiceImpl
	invitations *servicetest.Invitations
	profiles    *servicetest.Profiles
	mailer      *servicetest.Mailer
}

func newFixture() fixture {
	profiles := servicetest.NewProfiles(profile.Profile{
		ID: adminID, Email: "admin@example.com", FirstName: "Ada", LastName: "Admin",
		Role: session.RoleAdmin, RegistrationStatus: profile.StatusApproved,
	})
	invitations := servicetest.NewInvitations()
	mailer := &servicetest.Mailer{}
	svc := NewInvitationService(&servicetest.Tx{}, invitations, profiles, mailer,
		config.InvitationConfig{BaseURL: "https://app.test/enroll", ExpiryDays: 7},
		"https://app.test/login").(*InvitationServiceImpl)
	return fixture{svc: svc, invitations: invitations, profiles: profiles, mailer: mailer}
}

func invite(t *testing.T, f fixture, emailAddr string) invitation.InvitationResponse {
	t.Helper()
	resp, err := f.svc.Invite(context.Background(), adminSess, invitation.CreateRequest{
		Email: emailAddr, FirstName: "New", LastName: "Hire", Role: "employee",
	})
	require.NoError(t, err)
	return resp
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestInvite_SendsLink(t *testing.T) {
	f := newFixture()

	resp := invite(t, f, "New.Hire@Example.com")

	assert.Equal(t, "new.hire@example.com", resp.Email)
	assert.Equal(t, "pending", resp.Status)
	require.Len(t, f.mailer.Invitations, 1)
	sent := f.mailer.Invitations[0]
	assert.Equal(t, "Ada Admin", sent.InviterName)
	assert.Contains(t, sent.InvitationLink, "https://app.test/enroll?")
	assert.NotEmpty(t, tokenFromLink(t, sent.InvitationLink))
}

func TestInvite_RequiresAdmin(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Invite(context.Background(), session.Session{UserID: "x", Role: session.RoleManager},
		invitation.CreateRequest{Email: "a@example.com", FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, profile.ErrAdminAccessRequired)
}

func TestInvite_RejectsRegisteredEmail(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Invite(context.Background(), adminSess, invitation.CreateRequest{
		Email: "admin@example.com", FirstName: "A", LastName: "B",
	})
	assert.ErrorIs(t, err, invitation.ErrEmailAlreadyRegistered)
}

func TestResend_RevokesOldToken(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	first := invite(t, f, "hire@example.com")
	oldToken := tokenFromLink(t, f.mailer.Invitations[0].InvitationLink)

	second, err := f.svc.Resend(ctx, adminSess, invitation.ResendRequest{Email: "hire@example.com"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, invitation.StatusRevoked, f.invitations.Get(first.ID).Status)

	_, err = f.svc.Validate(ctx, invitation.ValidateRequest{Token: oldToken, Email: "hire@example.com"})
	assert.ErrorIs(t, err, invitation.ErrInvitationRevoked)

	newToken := tokenFromLink(t, f.mailer.Invitations[1].InvitationLink)
	_, err = f.svc.Validate(ctx, invitation.ValidateRequest{Token: newToken, Email: "hire@example.com"})
	assert.NoError(t, err)
}

func TestValidate_EmailMismatchAndExpiry(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	invite(t, f, "hire@example.com")
	token := tokenFromLink(t, f.mailer.Invitations[0].InvitationLink)

	_, err := f.svc.Validate(ctx, invitation.ValidateRequest{Token: token, Email: "other@example.com"})
	assert.ErrorIs(t, err, invitation.ErrEmailMismatch)

	f.svc.now = func() time.Time { return time.Now().AddDate(0, 0, 8) }
	_, err = f.svc.Validate(ctx, invitation.ValidateRequest{Token: token, Email: "hire@example.com"})
	assert.ErrorIs(t, err, invitation.ErrInvitationExpired)
}

func TestEnrollApproveFlow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	inv := invite(t, f, "hire@example.com")
	token := tokenFromLink(t, f.mailer.Invitations[0].InvitationLink)

	enrolled, err := f.svc.Enroll(ctx, invitation.EnrollRequest{
		Token: token, Email: "hire@example.com", Password: "s3cret-pass", ConfirmPassword: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", enrolled.RegistrationStatus)
	assert.Equal(t, invitation.StatusAccepted, f.invitations.Get(inv.ID).Status)

	stored, err := f.profiles.GetByID(ctx, enrolled.ProfileID)
	require.NoError(t, err)
	require.NotNil(t, stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*stored.PasswordHash), []byte("s3cret-pass")))
	assert.Equal(t, profile.DefaultWorkHours, stored.WorkHours)

	// the token is single use
	_, err = f.svc.Enroll(ctx, invitation.EnrollRequest{
		Token: token, Email: "hire@example.com", Password: "s3cret-pass", ConfirmPassword: "s3cret-pass",
	})
	assert.ErrorIs(t, err, invitation.ErrInvitationAlreadyUsed)

	pending, err := f.svc.ListPendingEnrollments(ctx, adminSess)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	approved, err := f.svc.ApproveEnrollment(ctx, adminSess, enrolled.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.RegistrationStatus)
	require.Len(t, f.mailer.Approvals, 1)
	assert.Equal(t, "https://app.test/login", f.mailer.Approvals[0].LoginLink)

	_, err = f.svc.RejectEnrollment(ctx, adminSess, enrolled.ProfileID)
	assert.ErrorIs(t, err, profile.ErrProfileNotPending)
}
