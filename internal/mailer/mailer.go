package mailer

// Mailer delivers one-time codes to account email addresses. Delivery is
// fire-and-forget from the auth flows' perspective: a failure surfaces as
// a request error but never rolls back the already-written code.
type Mailer interface {
	SendVerificationEmail(toEmail, toName, otp string) error
	SendPasswordResetEmail(toEmail, toName, otp string) error
}
