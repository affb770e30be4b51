package adapter

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupported marks container constructs the converter cannot express,
	// such as keyframed time warps with three or more control points.
	ErrUnsupported = errors.New("unsupported construct")
	// ErrReference marks broken mob or slot references inside a container.
	ErrReference = errors.New("reference resolution error")
	// ErrValidation marks composition trees that fail the pre-write checks.
	ErrValidation = errors.New("validation error")
	// ErrIdentity marks failures while resolving or synthesizing mob identities.
	ErrIdentity = errors.New("identity resolution error")
	// ErrEmbedding marks media that could not be copied into a container.
	ErrEmbedding = errors.New("embedding error")
	// ErrAdapter marks internal invariant violations, such as a transcribed
	// item whose length disagrees with the declared component length.
	ErrAdapter = errors.New("adapter error")
)

// Wrap builds an error message that includes conversion context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, phase, operation, message string, err error) error {
	detail := buildDetail(phase, operation, message)
	if marker == nil {
		marker = ErrAdapter
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(phase, operation, message string) string {
	parts := make([]string, 0, 3)
	if phase = strings.TrimSpace(phase); phase != "" {
		parts = append(parts, phase)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "conversion failure"
	}
	return strings.Join(parts, ": ")
}
