package ports

import "context"

// OwnershipChecker answers whether a user owns a project. Project
// records themselves live in the main platform, not here.
type OwnershipChecker interface {
	UserOwnsProject(ctx context.Context, projectID, userID string) (bool, error)
}

// TokenBalanceProvider supplies a user's governance token balance for
// a project. The balance becomes the voting power captured on a vote.
type TokenBalanceProvider interface {
	GovernanceTokens(ctx context.Context, projectID, userID string) (int64, error)
}

type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

type Notification struct {
	Title       string
	Description string
	Severity    Severity
}

// Notifier is a fire-and-forget sink for user-facing notifications.
type Notifier interface {
	Notify(n Notification)
}
