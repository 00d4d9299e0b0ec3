package ports

import "context"

// RegistrationGuard holds short-lived claims on emails being registered so
// concurrent sign-ups for the same address fail fast across workers.
type RegistrationGuard interface {
	// Claim returns false when another registration holds the email.
	Claim(ctx context.Context, email string) (bool, error)
	Release(ctx context.Context, email string) error
}
