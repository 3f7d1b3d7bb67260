package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lingokit/lingokit/pkg/log"
)

type ErrorType int

const (
	ErrFileNotFound ErrorType = iota
	ErrFileRead
	ErrFileWrite
	ErrParse
	ErrProvider
	ErrValidation
	ErrConfig
	ErrPersistence
	ErrTranslation
	ErrCancelled
	ErrUnknown
)

type PipelineError struct {
	Type    ErrorType
	Message string
	Context map[string]any
	Cause   error
}

func NewError(errorType ErrorType, message string) *PipelineError {
	return &PipelineError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
	}
}

func NewErrorWithCause(errorType ErrorType, message string, cause error) *PipelineError {
	return &PipelineError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
		Cause:   cause,
	}
}

func (e *PipelineError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s", e.Type.String(), e.Message))

	if len(e.Context) > 0 {
		var ctxParts []string
		for k, v := range e.Context {
			ctxParts = append(ctxParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("context: %s", strings.Join(ctxParts, ", ")))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, " | ")
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

func (e *PipelineError) WithContext(key string, value any) *PipelineError {
	e.Context[key] = value
	return e
}

func (t ErrorType) String() string {
	switch t {
	case ErrFileNotFound:
		return "FileNotFound"
	case ErrFileRead:
		return "FileRead"
	case ErrFileWrite:
		return "FileWrite"
	case ErrParse:
		return "Parse"
	case ErrProvider:
		return "Provider"
	case ErrValidation:
		return "Validation"
	case ErrConfig:
		return "Config"
	case ErrPersistence:
		return "Persistence"
	case ErrTranslation:
		return "Translation"
	case ErrCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

type ErrorHandler interface {
	Handle(err error) bool
	GetAdvice(err *PipelineError) string
}

type DefaultErrorHandler struct{}

func NewDefaultErrorHandler() ErrorHandler {
	return &DefaultErrorHandler{}
}

func (h *DefaultErrorHandler) Handle(err error) bool {
	perr, ok := err.(*PipelineError)
	if !ok {
		log.Error("Unknown Error: %v", err)
		return false
	}

	advice := h.GetAdvice(perr)
	log.Error("Error Detail: %v\n advice: %s", err, advice)

	return true
}

// GetAdvice returns error handling advice
func (h *DefaultErrorHandler) GetAdvice(err *PipelineError) string {
	switch err.Type {
	case ErrFileNotFound:
		return "Please check that the file path is correct and ensure the file exists with read permissions"
	case ErrFileRead:
		return "Please check file permissions to ensure read access and verify the file is not corrupted"
	case ErrFileWrite:
		return "Please ensure the output directory exists and has write permissions"
	case ErrParse:
		return "Please verify the input format—subtitle files should be SRT or WebVTT, structured files valid JSON"
	case ErrProvider:
		return "Please check if the API key is correct, network connectivity is normal, or review the provider's service status"
	case ErrValidation:
		return "Please verify input parameters are correct—file names and target languages cannot be empty"
	case ErrConfig:
		return "Please check that configuration files or environment variables are set correctly"
	case ErrPersistence:
		return "Please check that the cache database path is writable and the disk is not full"
	case ErrTranslation:
		return "An issue occurred during translation—possibly due to overly long text or API limits; try reducing batch size"
	case ErrCancelled:
		return "The run was cancelled; resume from the saved checkpoint to continue"
	default:
		return "Please review detailed error information and check relevant configuration and files"
	}
}

func IsErrorType(err error, errorType ErrorType) bool {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr.Type == errorType
	}
	return false
}

func WrapError(err error, errorType ErrorType, message string) *PipelineError {
	return NewErrorWithCause(errorType, message, err)
}

func SafeExecute(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewError(ErrUnknown, fmt.Sprintf("runtime error: %v", r))
		}
	}()

	return fn()
}
