package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a user-facing message.
type ErrorInfo struct {
	Code    string
	Message string
}

// IsUniqueViolation reports whether err is a unique-constraint violation.
// Matches Postgres (23505, "duplicate key ... unique constraint") and
// sqlite ("UNIQUE constraint failed") wording.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStrLower := strings.ToLower(err.Error())
	return strings.Contains(errStrLower, "duplicate key") ||
		strings.Contains(errStrLower, "unique constraint")
}

// ParseError converts database and transport errors into a safe, machine
// readable ErrorInfo. Internal detail (SQL, constraint names, hosts) never
// reaches the client.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalError,
			Message: "Something went wrong",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. GORM sentinel errors
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    NotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// 2. Postgres constraint violations

	// 2-1. Unique constraint (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStrLower)
	}

	// 2-2. Foreign key constraint (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    NotFound,
			Message: "Referenced resource does not exist",
		}
	}

	// 2-3. Not null constraint (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{
			Code:    ValidationError,
			Message: "A required field is missing",
		}
	}

	// 2-4. Check constraint (23514)
	if strings.Contains(errStrLower, "check constraint") {
		return ErrorInfo{
			Code:    ValidationError,
			Message: "A value is out of its allowed range",
		}
	}

	// 3. Network errors against the database or external services
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalError,
			Message: "A backing service is unavailable. Please try again later",
		}
	}

	// 4. Default
	return ErrorInfo{
		Code:    InternalError,
		Message: "Something went wrong. Please try again later",
	}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "email") || strings.Contains(errLower, "idx_users_email") {
		return ErrorInfo{
			Code:    AlreadyExists,
			Message: "Email is already registered",
		}
	}
	if strings.Contains(errLower, "username") || strings.Contains(errLower, "idx_users_username") {
		return ErrorInfo{
			Code:    AlreadyExists,
			Message: "Username is already taken",
		}
	}
	if strings.Contains(errLower, "collection_items") {
		return ErrorInfo{
			Code:    DuplicateItem,
			Message: "Fragrance is already in this collection",
		}
	}
	if strings.Contains(errLower, "votes") {
		return ErrorInfo{
			Code:    AlreadyVoted,
			Message: "You have already voted in this battle",
		}
	}
	return ErrorInfo{
		Code:    AlreadyExists,
		Message: "Resource already exists",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "fragrance") {
		return "Fragrance not found"
	}
	if strings.Contains(contextLower, "collection") {
		return "Collection not found"
	}
	if strings.Contains(contextLower, "battle") {
		return "Battle not found"
	}
	if strings.Contains(contextLower, "user") {
		return "User not found"
	}

	return "Resource not found"
}

// ParseAndRespond parses err and writes the failure envelope in one call.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Success: false,
		Error: ErrorBody{
			Message: errorInfo.Message,
			Code:    errorInfo.Code,
		},
	})
}
