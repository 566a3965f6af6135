package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal       ErrorCode = "COMMON_001"
	ErrCodeBadRequest     ErrorCode = "COMMON_002"
	ErrCodeNotFound       ErrorCode = "COMMON_003"
	ErrCodeConflict       ErrorCode = "COMMON_004"
	ErrCodeValidation     ErrorCode = "COMMON_005"
	ErrCodeDatabaseError  ErrorCode = "COMMON_006"
	ErrCodeCacheError     ErrorCode = "COMMON_007"
	ErrCodeConfiguration  ErrorCode = "COMMON_008"
	ErrCodeNotImplemented ErrorCode = "COMMON_009"
)

// Short aliases used at call sites.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeValidation   = ErrCodeValidation
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Pipeline module error codes.
const (
	ErrCodePatentNotFound     ErrorCode = "PAT_001"
	ErrCodePatentExists       ErrorCode = "PAT_002"
	ErrCodeEmptyRawGroup      ErrorCode = "PAT_003"
	ErrCodeReferenceEmptyKey  ErrorCode = "REF_001"
	ErrCodeDeadlineNotFound   ErrorCode = "OBL_001"
	ErrCodeUnknownFeeOffset   ErrorCode = "OBL_002"
	ErrCodeReportInvalidRange ErrorCode = "RPT_001"
)

// CodePatentNotFound is the domain alias used by repositories.
const CodePatentNotFound = ErrCodePatentNotFound

// errorCodeHTTPStatus maps error codes to HTTP status codes for the
// reporting API.
var errorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:       http.StatusInternalServerError,
	ErrCodeBadRequest:     http.StatusBadRequest,
	ErrCodeNotFound:       http.StatusNotFound,
	ErrCodeConflict:       http.StatusConflict,
	ErrCodeValidation:     http.StatusUnprocessableEntity,
	ErrCodeDatabaseError:  http.StatusInternalServerError,
	ErrCodeCacheError:     http.StatusInternalServerError,
	ErrCodeConfiguration:  http.StatusInternalServerError,
	ErrCodeNotImplemented: http.StatusNotImplemented,

	ErrCodePatentNotFound:     http.StatusNotFound,
	ErrCodePatentExists:       http.StatusConflict,
	ErrCodeEmptyRawGroup:      http.StatusBadRequest,
	ErrCodeReferenceEmptyKey:  http.StatusBadRequest,
	ErrCodeDeadlineNotFound:   http.StatusNotFound,
	ErrCodeUnknownFeeOffset:   http.StatusInternalServerError,
	ErrCodeReportInvalidRange: http.StatusBadRequest,
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode,
// defaulting to 500 for unmapped codes.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
