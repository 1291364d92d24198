package errors

// Error codes used across the relay pipeline. Only SignatureInvalid ever
// changes an HTTP response; the rest are logged and swallowed.
const (
	ErrInternal          = "INTERNAL"
	ErrNotFound          = "NOT_FOUND"
	ErrInvalidArgument   = "INVALID_ARGUMENT"
	ErrSignatureInvalid  = "SIGNATURE_INVALID"
	ErrAuthFailed        = "AUTH_FAILED"
	ErrLookupFailed      = "LOOKUP_FAILED"
	ErrTagMutationFailed = "TAG_MUTATION_FAILED"
	ErrMalformedResponse = "MALFORMED_RESPONSE"
)
