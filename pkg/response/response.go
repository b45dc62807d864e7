package response

// Error messages surfaced at the request boundary. Registry-level problems
// are never exposed beyond ErrInternal.
const (
	ErrInvalidBody       = "invalid request body"
	ErrUserIDRequired    = "userId is required"
	ErrInterestsRequired = "interests must be a list"
	ErrInternal          = "internal server error"

	// Fixed rejection message for rate-limited requests
	ErrRateLimited = "too many requests, slow down"
)
