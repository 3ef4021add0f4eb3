package screen

import (
	"errors"
	"fmt"

	"EquityScreener/internal/model"
)

// Kind classifies run errors.
type Kind int

const (
	KindDataUnavailable Kind = iota + 1
	KindProvider
	KindConfig
	KindComputation
	KindDeadline
)

func (k Kind) String() string {
	switch k {
	case KindDataUnavailable:
		return "DataUnavailable"
	case KindProvider:
		return "ProviderError"
	case KindConfig:
		return "ConfigError"
	case KindComputation:
		return "ComputationError"
	case KindDeadline:
		return "DeadlineExceeded"
	default:
		return "Unknown"
	}
}

// status maps per-ticker error kinds onto outcome statuses.
func (k Kind) status() model.Status {
	switch k {
	case KindDataUnavailable:
		return model.StatusDataUnavailable
	case KindProvider:
		return model.StatusProviderError
	case KindDeadline:
		return model.StatusSkipped
	default:
		return model.StatusComputationError
	}
}

// Error is a run error. Symbol is empty for run-level errors.
type Error struct {
	Kind   Kind
	Symbol string
	Err    error
}

func (e *Error) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Symbol, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a run error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
