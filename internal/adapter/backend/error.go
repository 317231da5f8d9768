package backend

// Kind classifies a gateway failure.
type Kind string

const (
	// KindHTTP is a non-2xx response, with or without a JSON error body.
	KindHTTP Kind = "http_error"
	// KindTransport is a network-level failure: DNS, refused, reset, cancelled.
	KindTransport Kind = "transport_error"
	// KindMalformed is a 2xx response whose payload has the wrong shape.
	KindMalformed Kind = "malformed"
)

// Error is the normalized failure of a backend call. Message is safe to show
// to the user.
type Error struct {
	Source  string
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
