package ports

// PasswordHasher produces and checks one-way password digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext produced hash. Malformed hashes
	// verify as false.
	Verify(plaintext, hash string) bool
}

// TokenService mints and checks bearer tokens whose subject is an email.
type TokenService interface {
	Issue(subject string) (string, error)
	// Verify returns the subject or one of security.ErrTokenMalformed,
	// ErrTokenBadSignature, ErrTokenExpired.
	Verify(token string) (string, error)
}
