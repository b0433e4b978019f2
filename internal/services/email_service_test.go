package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/justsurfingit/prep-pilot/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

type recordingSender struct {
	sent  [][]byte
	errs  []error
	calls int
}

func (s *recordingSender) Send(_ context.Context, raw []byte) error {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return err
		}
	}
	s.sent = append(s.sent, raw)
	return nil
}

func newTestEmailService(sender MessageSender) *EmailService {
	svc := NewEmailService(sender, "ops@example.com", logger.Nop())
	svc.backoff = 0
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestNotifyMigration_SkipsUninterestingRuns(t *testing.T) {
	sender := &recordingSender{}
	svc := newTestEmailService(sender)
	ctx := context.Background()

	require.NoError(t, svc.NotifyMigration(ctx, &MigrationReport{Total: 3, Migrated: 3}, true))
	require.NoError(t, svc.NotifyMigration(ctx, &MigrationReport{Total: 3, Skipped: 3}, false))
	require.NoError(t, svc.NotifyMigration(ctx, nil, false))
	assert.Zero(t, sender.calls)
}

func TestNotifyMigration_SendsSummary(t *testing.T) {
	sender := &recordingSender{}
	svc := newTestEmailService(sender)

	report := &MigrationReport{Total: 4, Migrated: 2, Skipped: 1, Errors: []string{"abc: connection reset"}}
	require.NoError(t, svc.NotifyMigration(context.Background(), report, false))
	require.Len(t, sender.sent, 1)

	msg := string(sender.sent[0])
	assert.Contains(t, msg, "To: ops@example.com\r\n")
	assert.Contains(t, msg, "Subject: Interview prep migration: 2 migrated, 1 errors\r\n")
	assert.Contains(t, msg, "Batch finished at 2024-05-01T09:30:00Z")
	assert.Contains(t, msg, "Fetched:  4")
	assert.Contains(t, msg, "  abc: connection reset\r\n")
}

func TestBuildReportMessage_CapsErrorList(t *testing.T) {
	report := &MigrationReport{Migrated: 1}
	for i := 0; i < maxReportedErrors+7; i++ {
		report.Errors = append(report.Errors, fmt.Sprintf("id-%d: failed", i))
	}
	msg := string(buildReportMessage("ops@example.com", report, time.Now()))

	assert.Contains(t, msg, fmt.Sprintf("id-%d: failed", maxReportedErrors-1))
	assert.NotContains(t, msg, fmt.Sprintf("id-%d: failed", maxReportedErrors))
	assert.Contains(t, msg, "... and 7 more")
	headers, _, ok := strings.Cut(msg, "\r\n\r\n")
	require.True(t, ok)
	assert.Contains(t, headers, "MIME-Version: 1.0")
}

func TestNotifyMigration_RetriesTransientFailures(t *testing.T) {
	sender := &recordingSender{errs: []error{errors.New("temporary"), &googleapi.Error{Code: http.StatusTooManyRequests}}}
	svc := newTestEmailService(sender)

	require.NoError(t, svc.NotifyMigration(context.Background(), &MigrationReport{Migrated: 1}, false))
	assert.Equal(t, 3, sender.calls)
	assert.Len(t, sender.sent, 1)
}

func TestNotifyMigration_FailsFastOnClientError(t *testing.T) {
	sender := &recordingSender{errs: []error{&googleapi.Error{Code: http.StatusForbidden}}}
	svc := newTestEmailService(sender)

	err := svc.NotifyMigration(context.Background(), &MigrationReport{Migrated: 1}, false)
	require.Error(t, err)
	assert.Equal(t, 1, sender.calls)
}

func TestNotifyMigration_GivesUpAfterThreeAttempts(t *testing.T) {
	boom := errors.New("unavailable")
	sender := &recordingSender{errs: []error{boom, boom, boom, boom}}
	svc := newTestEmailService(sender)

	err := svc.NotifyMigration(context.Background(), &MigrationReport{Migrated: 1}, false)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, sender.calls)
}
