package entities

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalid is matched by every *ValidationError through errors.Is.
var ErrInvalid = errors.New("invalid entity")

// ValidationError collects per-field messages for one entity form.
type ValidationError struct {
	Entity string            `json:"entity"`
	Fields map[string]string `json:"fields"`
}

func NewValidationError(entity string) *ValidationError {
	return &ValidationError{Entity: entity, Fields: map[string]string{}}
}

// Add records msg for field. The first message for a field wins.
func (e *ValidationError) Add(field, msg string) {
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = msg
}

// OrNil returns nil when no field failed, so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}
