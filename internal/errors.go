package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// ErrorKind is the closed set of failure categories exposed to callers.
type ErrorKind string

const (
	KindBadRequest   ErrorKind = "BAD_REQUEST"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindForbidden    ErrorKind = "FORBIDDEN"
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindValidation   ErrorKind = "VALIDATION_ERROR"
	KindConflict     ErrorKind = "CONFLICT"
	KindInternal     ErrorKind = "INTERNAL_ERROR"
)

// StatusCode returns the HTTP status class of the kind.
func (k ErrorKind) StatusCode() int {
	switch k {
	case KindBadRequest, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

type ErrorCode string

const (
	ErrCodeBadRequest       ErrorCode = "BAD_REQUEST"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidField     ErrorCode = "INVALID_FIELD"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeRateLimited      ErrorCode = "RATE_LIMITED"

	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeDuplicateRecord  ErrorCode = "DUPLICATE_RECORD"

	ErrCodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeNotAuthenticated    ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeInactiveAccount     ErrorCode = "INACTIVE_ACCOUNT"
	ErrCodeInvalidToken        ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired        ErrorCode = "TOKEN_EXPIRED"
	ErrCodeTokenSubjectMissing ErrorCode = "TOKEN_SUBJECT_MISSING"
	ErrCodeInsufficientRole    ErrorCode = "INSUFFICIENT_ROLE"
	ErrCodeSuperuserRequired   ErrorCode = "SUPERUSER_REQUIRED"

	ErrCodeRoleNotFound       ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeRoleNameTaken      ErrorCode = "ROLE_NAME_TAKEN"
	ErrCodeRoleInUse          ErrorCode = "ROLE_IN_USE"
	ErrCodeNoDefaultRole      ErrorCode = "NO_DEFAULT_ROLE"
	ErrCodePermissionNotFound ErrorCode = "PERMISSION_NOT_FOUND"
	ErrCodePermissionExists   ErrorCode = "PERMISSION_CODE_TAKEN"

	ErrCodeUserNotFound      ErrorCode = "USER_NOT_FOUND"
	ErrCodeEmailTaken        ErrorCode = "EMAIL_TAKEN"
	ErrCodeIncorrectPassword ErrorCode = "INCORRECT_PASSWORD"

	ErrCodeLocationNotFound  ErrorCode = "LOCATION_NOT_FOUND"
	ErrCodeLocationNameTaken ErrorCode = "LOCATION_NAME_TAKEN"
)

// AppError is the single error type that crosses the transport boundary.
type AppError struct {
	Kind    ErrorKind   `json:"error"`
	Code    ErrorCode   `json:"-"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Cause   error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) StatusCode() int {
	return e.Kind.StatusCode()
}

// GetDetailedMessage joins every validation message, falling back to Message.
func (e *AppError) GetDetailedMessage() string {
	if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
		messages := make([]string, len(validationErrors.Errors))
		for i, err := range validationErrors.Errors {
			messages[i] = err.Message
		}
		return strings.Join(messages, "; ")
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError with the same kind and code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// WithCause returns a copy carrying cause. Package-level sentinels are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// WithDetails returns a copy carrying details.
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithMessage returns a copy with a caller-facing message.
func (e *AppError) WithMessage(message string) *AppError {
	cp := *e
	cp.Message = message
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func newAppError(kind ErrorKind, message string, code ErrorCode) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func NewBadRequestError(message string, code ErrorCode) *AppError {
	return newAppError(KindBadRequest, message, code)
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return newAppError(KindValidation, message, code)
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return NewValidationError("Validation failed", ErrCodeValidationFailed).WithDetails(ValidationErrors{
		Errors: []ValidationError{
			{Field: field, Message: message, Code: string(code)},
		},
	})
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return newAppError(KindNotFound, message, code)
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return newAppError(KindUnauthorized, message, code)
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return newAppError(KindForbidden, message, code)
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return newAppError(KindConflict, message, code)
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Code:    ErrCodeInternal,
		Message: message,
		Cause:   cause,
	}
}

var (
	ErrNotFound  = NewNotFoundError("Resource not found", ErrCodeResourceNotFound)
	ErrDuplicate = NewConflictError("Resource already exists", ErrCodeDuplicateRecord)

	ErrInvalidCredentials = NewUnauthorizedError("Incorrect email or password", ErrCodeInvalidCredentials)
	ErrNotAuthenticated   = NewUnauthorizedError("Could not validate credentials", ErrCodeNotAuthenticated)
	ErrInactiveAccount    = NewBadRequestError("Inactive user", ErrCodeInactiveAccount)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrTokenNoSubject     = NewUnauthorizedError("Token subject is missing", ErrCodeTokenSubjectMissing)
	ErrInsufficientRole   = NewForbiddenError("The user doesn't have enough privileges", ErrCodeInsufficientRole)
	ErrSuperuserRequired  = NewForbiddenError("Superuser privileges required", ErrCodeSuperuserRequired)

	ErrRoleNotFound       = NewNotFoundError("Role not found", ErrCodeRoleNotFound)
	ErrRoleNameTaken      = NewConflictError("A role with this name already exists", ErrCodeRoleNameTaken)
	ErrRoleInUse          = NewConflictError("Role is assigned to one or more users", ErrCodeRoleInUse)
	ErrNoDefaultRole      = NewBadRequestError("No role is available for new users", ErrCodeNoDefaultRole)
	ErrPermissionNotFound = NewNotFoundError("Permission not found", ErrCodePermissionNotFound)
	ErrPermissionExists   = NewConflictError("A permission with this code already exists", ErrCodePermissionExists)

	ErrUserNotFound      = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrEmailTaken        = NewConflictError("A user with this email already exists", ErrCodeEmailTaken)
	ErrIncorrectPassword = NewBadRequestError("Incorrect password", ErrCodeIncorrectPassword)

	ErrLocationNotFound  = NewNotFoundError("Location not found", ErrCodeLocationNotFound)
	ErrLocationNameTaken = NewConflictError("A location with this name already exists", ErrCodeLocationNameTaken)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// FromError classifies any failure into exactly one kind. Unrecognised failures become
// INTERNAL_ERROR with a generic message; the original error is kept as Cause only.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := IsAppError(err); ok {
		return appErr
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound.WithCause(err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate.WithCause(err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return NewConflictError("Resource is referenced by other records", ErrCodeDuplicateRecord).WithCause(err)
	}
	return NewInternalError("Internal server error", err)
}

type Response struct {
	Error   ErrorKind   `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ToHTTPResponse returns the status and the wire body. Internal causes never leave here.
func (e *AppError) ToHTTPResponse() (int, Response) {
	return e.StatusCode(), Response{
		Error:   e.Kind,
		Message: e.Message,
		Details: e.Details,
	}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	_, body := e.ToHTTPResponse()
	return json.Marshal(body)
}
