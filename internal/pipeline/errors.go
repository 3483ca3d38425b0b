package pipeline

import (
	"errors"
	"math"

	"github.com/letmecheque/letmecheque/internal/source"
)

// Conditions returned by the engine. Callers test them with errors.Is.
var (
	ErrUnknownCategory  = errors.New("unknown category")
	ErrInsufficientData = errors.New("insufficient data")
	ErrForecastExempt   = errors.New("forecast not offered for category")
	ErrNegativeDelta    = errors.New("negative delta")
	ErrInvalidAmount    = errors.New("amount is not a finite number")

	ErrDatasetUnavailable = source.ErrDatasetUnavailable
	ErrMissingColumn      = source.ErrMissingColumn
)

// Condition maps an engine error to a stable name for prompts and API
// bodies. Unrecognized errors map to "Internal".
func Condition(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownCategory):
		return "UnknownCategory"
	case errors.Is(err, ErrInsufficientData):
		return "InsufficientData"
	case errors.Is(err, ErrForecastExempt):
		return "ForecastExempt"
	case errors.Is(err, ErrNegativeDelta):
		return "NegativeDelta"
	case errors.Is(err, ErrInvalidAmount):
		return "InvalidAmount"
	case errors.Is(err, ErrDatasetUnavailable):
		return "DatasetUnavailable"
	case errors.Is(err, ErrMissingColumn):
		return "MissingColumn"
	default:
		return "Internal"
	}
}

// Prompt returns the user-facing hint for a condition that replaces a
// missing result.
func Prompt(err error) string {
	switch Condition(err) {
	case "InsufficientData":
		return "Not enough months of data to forecast"
	case "ForecastExempt":
		return "Forecast not shown for this category"
	case "UnknownCategory":
		return "Pick a category from the dataset"
	case "DatasetUnavailable":
		return "Dataset not found; check your data directory"
	case "InvalidAmount":
		return "Enter an amount in euro, for example 250"
	case "":
		return ""
	default:
		return err.Error()
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
