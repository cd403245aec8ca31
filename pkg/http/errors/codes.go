package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeMissingField   = "missing_field"

	// Identity errors
	ErrCodeMissingUser        = "missing_user"
	ErrCodeRegistrationNeeded = "registration_required"

	// Resource errors
	ErrCodeNotFound = "not_found"

	// SRS errors
	ErrCodeRecordUpdateFailed = "record_update_failed"
	ErrCodeRecordFetchFailed  = "record_fetch_failed"

	// Battle errors
	ErrCodeRoomNotFound       = "room_not_found"
	ErrCodeEnqueueFailed      = "enqueue_failed"
	ErrCodeSubmitFailed       = "submit_failed"
	ErrCodeRoomCreationFailed = "room_creation_failed"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"

	// Server errors
	ErrCodeInternalError = "internal_error"

	// Leaderboard errors
	ErrCodeLeaderboardFetchFailed = "leaderboard_fetch_failed"
)
