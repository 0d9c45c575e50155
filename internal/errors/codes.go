package errors

// Error code constants.
// Format: CATEGORY or CATEGORY_DETAIL; the frontend maps these codes to
// localized messages, so they are part of the API contract.

const (
	// ==================== Validation ====================
	ValidationError = "VALIDATION_ERROR" // malformed or missing input

	// ==================== Auth ====================
	Unauthorized = "UNAUTHORIZED"  // login required
	InvalidToken = "INVALID_TOKEN" // malformed or tampered token
	TokenExpired = "TOKEN_EXPIRED" // token past its expiry
	Forbidden    = "FORBIDDEN"     // authenticated but not allowed

	// ==================== Resources ====================
	NotFound      = "NOT_FOUND"      // missing resource
	AlreadyExists = "ALREADY_EXISTS" // unique constraint conflict

	// ==================== State conflicts ====================
	DuplicateItem   = "DUPLICATE_ITEM"   // fragrance already in collection
	AlreadyVoted    = "ALREADY_VOTED"    // one vote per user per battle
	BattleCompleted = "BATTLE_COMPLETED" // battle no longer accepts changes

	// ==================== Admission ====================
	RateLimitExceeded = "RATE_LIMIT_EXCEEDED" // too many requests in window

	// ==================== External ====================
	AIServiceError = "AI_SERVICE_ERROR" // LLM call failed or timed out

	// ==================== Internal ====================
	InternalError = "INTERNAL_ERROR" // unexpected fault, details not leaked
)
