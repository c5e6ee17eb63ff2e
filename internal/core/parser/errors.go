package parser

import (
	"errors"
	"fmt"

	"github.com/penwyp/go-claude-usage/internal/core/model"
)

// ErrorKind classifies a parse failure
type ErrorKind int

const (
	// KindMissingField means a category label with its percentage was not found
	KindMissingField ErrorKind = iota
	// KindInvalidFormat means the label was found but the percentage was unusable
	KindInvalidFormat
)

var (
	ErrMissingField  = errors.New("missing field")
	ErrInvalidFormat = errors.New("invalid format")
)

// ParseError describes why a snapshot could not be built
type ParseError struct {
	Kind   ErrorKind
	Field  model.Category
	Detail string
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case KindMissingField:
		return fmt.Sprintf("Could not find %s in CLI output", e.Field)
	default:
		return fmt.Sprintf("Invalid format: %s", e.Detail)
	}
}

// Is lets callers match with errors.Is(err, ErrMissingField)
func (e *ParseError) Is(target error) bool {
	switch target {
	case ErrMissingField:
		return e.Kind == KindMissingField
	case ErrInvalidFormat:
		return e.Kind == KindInvalidFormat
	}
	return false
}

func missingField(c model.Category) error {
	return &ParseError{Kind: KindMissingField, Field: c}
}

func invalidFormat(c model.Category, detail string) error {
	return &ParseError{Kind: KindInvalidFormat, Field: c, Detail: detail}
}
