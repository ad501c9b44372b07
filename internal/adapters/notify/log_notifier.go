package notify

import (
	"context"
	"fmt"

	"github.com/PabloGalante/pulsebot/internal/domain"
	"github.com/PabloGalante/pulsebot/internal/observability"
)

// LogNotifier writes notifications to the log instead of a chat platform.
// Used in local mode and in tests.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Solicit(ctx context.Context, user domain.UserID, session domain.SessionID) error {
	observability.LoggerFromContext(ctx).Info("solicit",
		"participant", user,
		"session_id", session)
	return nil
}

func (n *LogNotifier) Remind(ctx context.Context, user domain.UserID, session domain.SessionID) error {
	observability.LoggerFromContext(ctx).Info("remind",
		"participant", user,
		"session_id", session)
	return nil
}

func (n *LogNotifier) DeliverReport(ctx context.Context, originRef, text string) error {
	observability.LoggerFromContext(ctx).Info("deliver report",
		"origin_ref", originRef,
		"report_chars", len(text))
	// The report body goes to stdout so a local run actually shows it.
	fmt.Println(text)
	return nil
}
