package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/justsurfingit/prep-pilot/internal/logger"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

const maxReportedErrors = 50

// ReportNotifier is told about every finished migration batch.
type ReportNotifier interface {
	NotifyMigration(ctx context.Context, report *MigrationReport, dryRun bool) error
}

// MessageSender delivers one raw RFC 2822 message.
type MessageSender interface {
	Send(ctx context.Context, raw []byte) error
}

// EmailService mails a summary of committed migration batches to an operator.
type EmailService struct {
	sender    MessageSender
	recipient string
	log       *logger.Logger
	now       func() time.Time
	backoff   time.Duration
}

func NewEmailService(sender MessageSender, recipient string, log *logger.Logger) *EmailService {
	return &EmailService{
		sender:    sender,
		recipient: recipient,
		log:       log.With("service", "EmailService"),
		now:       time.Now,
		backoff:   time.Second,
	}
}

// NotifyMigration skips dry runs and batches that migrated nothing.
func (s *EmailService) NotifyMigration(ctx context.Context, report *MigrationReport, dryRun bool) error {
	if dryRun || report == nil || report.Migrated == 0 {
		return nil
	}
	msg := buildReportMessage(s.recipient, report, s.now())
	err := retry(3, s.backoff, func() error {
		return s.sender.Send(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("send migration report: %w", err)
	}
	s.log.Info("Migration report sent", "migrated", report.Migrated, "errors", len(report.Errors))
	return nil
}

func buildReportMessage(to string, report *MigrationReport, at time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: Interview prep migration: %d migrated, %d errors\r\n", report.Migrated, len(report.Errors))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "Batch finished at %s\r\n\r\n", at.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Fetched:  %d\r\n", report.Total)
	fmt.Fprintf(&b, "Migrated: %d\r\n", report.Migrated)
	fmt.Fprintf(&b, "Skipped:  %d\r\n", report.Skipped)
	fmt.Fprintf(&b, "Errors:   %d\r\n", len(report.Errors))

	if len(report.Errors) > 0 {
		b.WriteString("\r\nFailed records:\r\n")
		for i, e := range report.Errors {
			if i == maxReportedErrors {
				fmt.Fprintf(&b, "... and %d more\r\n", len(report.Errors)-maxReportedErrors)
				break
			}
			fmt.Fprintf(&b, "  %s\r\n", e)
		}
	}
	return []byte(b.String())
}

// GmailSender sends through the authenticated user's mailbox.
type GmailSender struct {
	GmailClient *gmail.Service
}

func NewGmailSender(svc *gmail.Service) *GmailSender {
	return &GmailSender{GmailClient: svc}
}

func (g *GmailSender) Send(ctx context.Context, raw []byte) error {
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}
	_, err := g.GmailClient.Users.Messages.Send("me", msg).Context(ctx).Do()
	return err
}

// --- HELPERS ---

// retry executes a function with exponential backoff
func retry(attempts int, sleep time.Duration, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = f()
		if err == nil {
			return nil
		}
		// fail fast on 4xx, except rate limiting
		if isClientError(err) {
			return err
		}
		if i < attempts-1 {
			time.Sleep(sleep)
			sleep *= 2
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}

func isClientError(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code >= 400 && gErr.Code < 500 && gErr.Code != 429
	}
	return false
}
