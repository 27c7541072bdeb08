package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/bankofshash/support-ai/pkg/logging"
)

// LockoutAlerter emails the fraud desk whenever a chat session exhausts its
// verification retries. Failed identity checks are a fraud signal worth a
// human look.
type LockoutAlerter struct {
	sender    EmailSender
	fraudDesk string
	logger    *logging.Logger
}

// NewLockoutAlerter creates a lockout alerter. Either argument may be
// nil/empty, which disables alerting.
func NewLockoutAlerter(sender EmailSender, fraudDesk string, logger *logging.Logger) *LockoutAlerter {
	if logger == nil {
		logger = logging.Default()
	}
	return &LockoutAlerter{sender: sender, fraudDesk: fraudDesk, logger: logger}
}

// NotifyLockout reports a locked session to the fraud desk.
func (a *LockoutAlerter) NotifyLockout(ctx context.Context, conversationID string) error {
	if a == nil || a.sender == nil || a.fraudDesk == "" {
		return nil
	}
	err := a.sender.Send(ctx, EmailMessage{
		To:      a.fraudDesk,
		ToName:  "Fraud Desk",
		Subject: "Support chat identity verification locked out",
		Body: fmt.Sprintf(
			"Conversation %s failed identity verification and was locked at %s UTC. Transcript available via the admin API.",
			conversationID, time.Now().UTC().Format(time.RFC3339),
		),
	})
	if err != nil {
		a.logger.Error("lockout alert failed", "conversation_id", conversationID, "error", err)
		return err
	}
	return nil
}
