package utils

import "fmt"

type AppError struct {
	Code    string
	Message string
	Origin  error // Original error that caused this error, if any
}

func (appErr *AppError) Error() string {
	if appErr.Origin != nil {
		return appErr.Message + ": " + appErr.Origin.Error()
	}
	return appErr.Message
}

// Standard error codes for the application
const (
	// Resource errors
	ErrNotFound     = "NOT_FOUND"
	ErrDuplicate    = "DUPLICATE"
	ErrInvalidInput = "INVALID_INPUT"

	// Authentication/Authorization errors
	ErrUnauthorized       = "UNAUTHORIZED"
	ErrInvalidToken       = "INVALID_TOKEN"
	ErrInvalidCredentials = "INVALID_CREDENTIALS"

	// Identity errors
	ErrUserProfileMissing = "USER_PROFILE_MISSING" // Authenticated but no profile document resolves the identity
	ErrUserAlreadyExists  = "USER_ALREADY_EXISTS"

	// Reward errors
	ErrRewardNotFound     = "REWARD_NOT_FOUND"
	ErrInsufficientPoints = "INSUFFICIENT_POINTS"

	// Backing store errors
	ErrStoreUnavailable = "STORE_UNAVAILABLE"

	// Actor communication errors
	ErrActorTimeout = "ACTOR_TIMEOUT"
)

// Error creation helper functions
func NewAppError(code string, message string, originalErr error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Origin:  originalErr,
	}
}

// Specific error creators for common cases
func NewProfileMissingError(userKey string) *AppError {
	return &AppError{
		Code:    ErrUserProfileMissing,
		Message: "No profile found for user: " + userKey,
	}
}

func NewRewardNotFoundError(rewardID string) *AppError {
	return &AppError{
		Code:    ErrRewardNotFound,
		Message: "Reward not found: " + rewardID,
	}
}

func NewInsufficientPointsError(required int, actual int) *AppError {
	return &AppError{
		Code:    ErrInsufficientPoints,
		Message: fmt.Sprintf("Insufficient points. Required: %d, Actual: %d", required, actual),
	}
}

func NewStoreError(op string, originalErr error) *AppError {
	return &AppError{
		Code:    ErrStoreUnavailable,
		Message: "Store operation failed: " + op,
		Origin:  originalErr,
	}
}

// Helper method to check if an error is of a specific type
func IsErrorCode(err error, code string) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// AppErrorToHTTPStatus converts an AppError code to an HTTP status code.
func AppErrorToHTTPStatus(errorCode string) int {
	switch errorCode {
	case ErrNotFound, ErrUserProfileMissing, ErrRewardNotFound:
		return 404 // http.StatusNotFound
	case ErrInvalidInput, ErrInvalidCredentials:
		return 400 // http.StatusBadRequest
	case ErrUnauthorized, ErrInvalidToken:
		return 401 // http.StatusUnauthorized
	case ErrInsufficientPoints:
		return 402 // http.StatusPaymentRequired
	case ErrDuplicate, ErrUserAlreadyExists:
		return 409 // http.StatusConflict
	case ErrStoreUnavailable, ErrActorTimeout:
		return 500 // http.StatusInternalServerError
	default:
		return 500 // http.StatusInternalServerError for unknown errors
	}
}
