package errors

// Error code constants, format: CATEGORY_SPECIFIC_DETAIL.
// The gateway adapter maps these onto chat-visible messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED" // missing or bad service token
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid = "AUTH_TOKEN_INVALID"
	AuthOwnerOnly    = "AUTH_OWNER_ONLY" // maintenance surface, owner key required

	// ==================== Permission (PERM_) ====================
	PermManageMessagesRequired = "PERM_MANAGE_MESSAGES_REQUIRED" // tag removal

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationTagTooShort  = "VALIDATION_TAG_TOO_SHORT"    // below 3 chars
	ValidationTagTooLong   = "VALIDATION_TAG_TOO_LONG"     // above 50 chars
	ValidationContentLong  = "VALIDATION_CONTENT_TOO_LONG" // above 1024 chars

	// ==================== Tags (TAG_) ====================
	TagNotFound      = "TAG_NOT_FOUND"
	TagAlreadyExists = "TAG_ALREADY_EXISTS"

	// ==================== Export (EXPORT_) ====================
	ExportInvalidFormat = "EXPORT_INVALID_FORMAT"
	ExportArchiveFailed = "EXPORT_ARCHIVE_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR"
	StorageUnavailable  = "STORAGE_UNAVAILABLE" // backing store failed to respond or commit
)
