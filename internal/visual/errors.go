package visual

import (
	"errors"
	"fmt"
)

// ErrVisualMismatch возвращается, когда бюджет отличий превышен после всех
// попыток и стратегий.
var ErrVisualMismatch = errors.New("visual mismatch")

type MismatchError struct {
	TestID      string
	Strategy    string
	Result      Result
	ArtifactDir string
}

func (e *MismatchError) Error() string {
	msg := fmt.Sprintf("%s: %s (%s): отличаются %d из %d пикселей (%.4f)",
		ErrVisualMismatch, e.TestID, e.Strategy, e.Result.DiffPixels, e.Result.TotalPixels, e.Result.Ratio)
	if e.Result.SizeMismatch {
		msg += fmt.Sprintf(", размер %dx%d вместо %dx%d",
			e.Result.ActualWidth, e.Result.ActualHeight, e.Result.Width, e.Result.Height)
	}
	if e.ArtifactDir != "" {
		msg += ", артефакты: " + e.ArtifactDir
	}
	return msg
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrVisualMismatch
}
