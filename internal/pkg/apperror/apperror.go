package apperror

// Kind classifies where in the request lifecycle an error originated.
type Kind int

const (
	// KindValidation is a local input error caught before any network activity.
	KindValidation Kind = iota
	// KindUnauthenticated means a protected call had no usable session, or the
	// server rejected the token. Callers should prompt for login.
	KindUnauthenticated
	// KindServer means the server responded with a non-2xx status.
	KindServer
	// KindNetwork means the request was sent but no response was received
	// (offline, DNS failure, timeout).
	KindNetwork
	// KindTransport means the request could not be built or sent at all.
	KindTransport
)

// AppError is a custom error type that carries the error kind and, for server
// errors, the HTTP status code of the response.
type AppError struct {
	Kind    Kind
	Status  int    // HTTP status code for KindServer, zero otherwise
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a kind and message.
func New(kind Kind, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, kind Kind, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Server creates a new AppError for a non-2xx response.
func Server(status int, message string) *AppError {
	return &AppError{
		Kind:    KindServer,
		Status:  status,
		Message: message,
	}
}
