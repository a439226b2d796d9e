package session

import "errors"

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrAuth matches every *AuthError.
	ErrAuth = errors.New("authentication failed")
	// ErrCorruptState is returned when a stored value cannot be decoded.
	ErrCorruptState = errors.New("corrupt session state")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string        { return e.Message }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// AuthReason distinguishes the ways an AuthError can happen.
type AuthReason int

const (
	ReasonInvalidCredentials AuthReason = iota + 1
	ReasonEmailTaken
)

// AuthError reports an unknown email, a wrong password or a duplicate signup.
// The message never says which of email or password was wrong.
type AuthError struct {
	Reason  AuthReason
	Message string
}

func (e *AuthError) Error() string        { return e.Message }
func (e *AuthError) Is(target error) bool { return target == ErrAuth }

// Message returns the text to show the user for err. Errors that are not
// validation or auth failures get a generic message.
func Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Something went wrong, please try again"
}

func errMissing(field, msg string) error { return &ValidationError{Field: field, Message: msg} }

var errInvalidCredentials = &AuthError{Reason: ReasonInvalidCredentials, Message: "Invalid email or password"}
