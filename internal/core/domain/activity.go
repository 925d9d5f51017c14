package domain

import "time"

// ActivityKind labels an authentication event in the activity log.
type ActivityKind string

const (
	ActivityLoginSucceeded ActivityKind = "login_succeeded"
	ActivityLoginFailed    ActivityKind = "login_failed"
	ActivityTokenRefreshed ActivityKind = "token_refreshed"
	ActivityRefreshDenied  ActivityKind = "refresh_denied"
	ActivityLogout         ActivityKind = "logout"
)

// Activity is one persisted entry of the authentication audit trail.
type Activity struct {
	Email      string
	Kind       ActivityKind
	Reason     string // optional
	OccurredAt time.Time
}
