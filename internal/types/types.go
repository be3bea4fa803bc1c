// Package types defines core data types and the error taxonomy for the
// document translator.
package types

import "fmt"

// PatternType classifies a protected span.
type PatternType string

const (
	PatternCode        PatternType = "code"
	PatternTable       PatternType = "table"
	PatternSimpleTable PatternType = "simple_table"
	PatternTechnical   PatternType = "technical"
	PatternNumeric     PatternType = "numeric"
)

// ProtectedPattern represents one span removed from the source text and
// replaced by a placeholder token.
type ProtectedPattern struct {
	Type         PatternType            `json:"type"`
	OriginalText string                 `json:"original_text"`
	Placeholder  string                 `json:"placeholder"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// ProtectionResult holds the outcome of a protection pass.
// Patterns are in insertion order (first detected first).
type ProtectionResult struct {
	ProtectedText       string             `json:"protected_text"`
	Patterns            []ProtectedPattern `json:"patterns"`
	HasProtectedContent bool               `json:"has_protected_content"`
}

// RestoreResult holds the outcome of a restore pass.
// RestoredCount may be less than the pattern count when the model dropped or
// mangled a placeholder; that is data loss, not an error.
type RestoreResult struct {
	RestoredText  string `json:"restored_text"`
	RestoredCount int    `json:"restored_count"`
}

// Progress is a UI-agnostic snapshot of translation progress.
type Progress struct {
	Percent    int    `json:"percent"`
	Message    string `json:"message"`
	ChunkIndex int    `json:"chunk_index,omitempty"`
	ChunkTotal int    `json:"chunk_total,omitempty"`
}

func (p Progress) String() string {
	if p.ChunkTotal > 0 {
		return fmt.Sprintf("%d%% (%d/%d) %s", p.Percent, p.ChunkIndex, p.ChunkTotal, p.Message)
	}
	return fmt.Sprintf("%d%% %s", p.Percent, p.Message)
}

// ProgressCallback reports overall translation progress as a percentage plus
// a human-readable message.
type ProgressCallback func(pct int, message string)

// ChunkCallback reports one completed chunk: its 1-based index, the chunk
// total, and the restored chunk text. The total is exact once splitting has
// happened but callers should treat it as approximate.
type ChunkCallback func(index, total int, text string)

// TranslationOptions configures one translation call. All fields are
// optional; unset fields fall back to the configuration defaults.
type TranslationOptions struct {
	APIUrl          string
	ModelName       string
	MaxChunkTokens  int
	OnProgress      ProgressCallback
	OnChunkComplete ChunkCallback
}

// TranslationResult is the outcome of a whole-document translation.
type TranslationResult struct {
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	ChunkCount     int    `json:"chunk_count"`
	PatternCount   int    `json:"pattern_count"`
	RestoredCount  int    `json:"restored_count"`
}

// ErrorCode classifies application errors.
type ErrorCode string

const (
	ErrValidation        ErrorCode = "VALIDATION_ERROR"
	ErrAPIConnection     ErrorCode = "API_CONNECTION_ERROR"
	ErrAPITimeout        ErrorCode = "API_TIMEOUT_ERROR"
	ErrAPIResponseFormat ErrorCode = "API_RESPONSE_FORMAT_ERROR"
	ErrClient            ErrorCode = "CLIENT_ERROR"
	ErrCancelled         ErrorCode = "TRANSLATION_CANCELLED"
	ErrFileRead          ErrorCode = "FILE_READ_ERROR"
	ErrConfig            ErrorCode = "CONFIG_ERROR"
	ErrInternal          ErrorCode = "INTERNAL_ERROR"
)

// AppError carries a taxonomy code, a human-readable message, optional
// details, and the underlying cause.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// CodeOf returns the ErrorCode of err if it is an *AppError, or ErrInternal.
func CodeOf(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ErrInternal
}
