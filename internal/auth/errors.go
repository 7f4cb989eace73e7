package auth

import "errors"

// Sentinel errors for the authentication flows. Handlers map these onto HTTP
// statuses; anything not listed here is treated as an internal fault.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password,
	// so a caller cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailNotVerified blocks login until the verification link is used.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrEmailTaken is returned on registration with an existing email.
	ErrEmailTaken = errors.New("an account with this email already exists")

	// ErrUserNotFound surfaces from flows that do not defend against
	// enumeration (forgot-password, admin lookups).
	ErrUserNotFound = errors.New("user not found")

	// ErrAlreadyVerified rejects a second use of a verification link.
	ErrAlreadyVerified = errors.New("email already verified")

	// ErrMailDelivery marks a transport failure sending an email. It is a
	// server-side fault, distinct from any token or credential error.
	ErrMailDelivery = errors.New("failed to send email")
)
