package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shimms/shimms-backend/internal/logger"
	"github.com/shimms/shimms-backend/internal/platform/resend"
)

// MailerService wraps the email collaborator with the typed sends the
// platform needs. Every send is fire-and-forget: failures are logged and the
// calling flow continues.
type MailerService interface {
	SendWelcome(ctx context.Context, to, firstName string)
	SendAssessmentReminder(ctx context.Context, to, firstName, kind string)
	SendCoachMessage(ctx context.Context, to, coachName, preview string)
	SendInvitation(ctx context.Context, to, inviteURL, role string)
	SendSystemAlert(ctx context.Context, to, subject, body string)
}

type mailerService struct {
	log     *logger.Logger
	client  resend.Client
	baseURL string
}

func NewMailerService(log *logger.Logger, client resend.Client, appBaseURL string) MailerService {
	serviceLog := log.With("service", "MailerService")
	return &mailerService{log: serviceLog, client: client, baseURL: appBaseURL}
}

func (m *mailerService) send(ctx context.Context, kind string, req resend.SendEmailRequest) {
	if m.client == nil {
		m.log.Debug("Email dispatch disabled, skipping", "kind", kind)
		return
	}
	// Detach from the request context so a finished request doesn't cancel
	// the send; bound it instead.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	go func() {
		defer cancel()
		if _, err := m.client.Send(sendCtx, req); err != nil {
			m.log.Warn("Email send failed", "kind", kind, "error", err)
		}
	}()
}

func (m *mailerService) SendWelcome(ctx context.Context, to, firstName string) {
	m.send(ctx, "welcome", resend.SendEmailRequest{
		To:      []string{to},
		Subject: "Welcome to SHIMMS",
		Text: fmt.Sprintf("Hi %s,\n\nWelcome aboard. Your first step is the welcome assessment: %s/assessments/welcome\n\n– Stefan",
			firstName, m.baseURL),
	})
}

func (m *mailerService) SendAssessmentReminder(ctx context.Context, to, firstName, kind string) {
	m.send(ctx, "assessment-reminder", resend.SendEmailRequest{
		To:      []string{to},
		Subject: "Your next assessment is waiting",
		Text: fmt.Sprintf("Hi %s,\n\nYour %s assessment is ready when you are: %s/assessments/%s\n\n– Stefan",
			firstName, kind, m.baseURL, kind),
	})
}

func (m *mailerService) SendCoachMessage(ctx context.Context, to, coachName, preview string) {
	m.send(ctx, "coach-client-message", resend.SendEmailRequest{
		To:      []string{to},
		Subject: fmt.Sprintf("New message from %s", coachName),
		Text:    fmt.Sprintf("%s wrote:\n\n%s\n\nReply at %s/messages", coachName, preview, m.baseURL),
	})
}

func (m *mailerService) SendInvitation(ctx context.Context, to, inviteURL, role string) {
	m.send(ctx, "invitation", resend.SendEmailRequest{
		To:      []string{to},
		Subject: "You have been invited to SHIMMS",
		Text:    fmt.Sprintf("You have been invited to join SHIMMS as a %s.\n\nAccept here: %s\n\nThe link expires in 7 days.", role, inviteURL),
	})
}

func (m *mailerService) SendSystemAlert(ctx context.Context, to, subject, body string) {
	m.send(ctx, "system-alert", resend.SendEmailRequest{
		To:      []string{to},
		Subject: subject,
		Text:    body,
	})
}
