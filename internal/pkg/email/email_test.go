package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	failures int
	sent     []Message
}

func (r *recordingSender) Send(_ context.Context, msg Message) error {
	if r.failures > 0 {
		r.failures--
		return errors.New("temporary failure")
	}
	r.sent = append(r.sent, msg)
	return nil
}

func newTestService(t *testing.T, sender Sender) *emailServiceImpl {
	t.Helper()
	svc, err := NewEmailService(sender, "no-reply@example.com", "TimeGuard")
	require.NoError(t, err)
	impl := svc.(*emailServiceImpl)
	impl.backoff = time.Millisecond
	return impl
}

func TestSendInvitation_RendersTemplate(t *testing.T) {
	sender := &recordingSender{}
	svc := newTestService(t, sender)

	err := svc.SendInvitation(context.Background(), InvitationEmail{
		To:             "new@example.com",
		FirstName:      "Ana",
		InviterName:    "Admin User",
		Role:           "employee",
		InvitationLink: "https://app.example.com/enroll?token=abc",
		ExpiresAt:      "2026-01-08",
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "new@example.com", msg.To)
	assert.Contains(t, msg.HTML, "Hello Ana")
	assert.Contains(t, msg.HTML, "https://app.example.com/enroll?token=abc")
}

func TestSendVarianceAlert_FormatsNumbers(t *testing.T) {
	sender := &recordingSender{}
	svc := newTestService(t, sender)

	err := svc.SendVarianceAlert(context.Background(), VarianceAlertEmail{
		To:                 "manager@example.com",
		EmployeeName:       "Ana Lee",
		SiteName:           "Harbor",
		Date:               "2026-03-02",
		ExpectedHours:      8,
		ActualHours:        6.5,
		VariancePercentage: -18.75,
		Threshold:          5,
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Subject, "Ana Lee at Harbor")
	assert.Contains(t, sender.sent[0].HTML, "-18.75%")
}

func TestSend_RetriesThenSucceeds(t *testing.T) {
	sender := &recordingSender{failures: 2}
	svc := newTestService(t, sender)

	err := svc.SendEnrollmentApproved(context.Background(), EnrollmentApprovedEmail{To: "a@example.com", FirstName: "A"})
	require.NoError(t, err)
	assert.Len(t, sender.sent, 1)
}

func TestSend_GivesUpAfterMaxRetries(t *testing.T) {
	sender := &recordingSender{failures: maxRetries}
	svc := newTestService(t, sender)

	err := svc.SendEnrollmentApproved(context.Background(), EnrollmentApprovedEmail{To: "a@example.com"})
	assert.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestSend_NilSenderIsNoop(t *testing.T) {
	svc := newTestService(t, nil)

	err := svc.SendEnrollmentApproved(context.Background(), EnrollmentApprovedEmail{To: "a@example.com"})
	assert.NoError(t, err)
}

type fakeSES struct {
	input *ses.SendRawEmailInput
}

func (f *fakeSES) SendRawEmail(_ context.Context, params *ses.SendRawEmailInput, _ ...func(*ses.Options)) (*ses.SendRawEmailOutput, error) {
	f.input = params
	return &ses.SendRawEmailOutput{}, nil
}

func TestSESSender_BuildsRawMessage(t *testing.T) {
	client := &fakeSES{}
	sender := NewSESSenderWithClient(client)

	err := sender.Send(context.Background(), Message{
		From: "no-reply@example.com", FromName: "TimeGuard", To: "a@example.com", Subject: "Hi", HTML: "<p>x</p>",
	})
	require.NoError(t, err)
	require.NotNil(t, client.input)

	raw := string(client.input.RawMessage.Data)
	assert.Contains(t, raw, "To: a@example.com\r\n")
	assert.Contains(t, raw, "Subject: Hi\r\n")
	assert.Contains(t, raw, "<p>x</p>")
}
