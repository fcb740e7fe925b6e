package healing

import (
	"errors"
	"fmt"
)

// ErrSelectorRecovery возвращается, когда исходный селектор ничего не нашел
// и ни одна стратегия восстановления не дала замены.
var ErrSelectorRecovery = errors.New("selector recovery failed")

type RecoveryError struct {
	Action   string
	Selector string
	Hint     string
	Snapshot string
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("%s: %s: селектор %q не найден, замена по подсказке %q не найдена (снимок %s)",
		ErrSelectorRecovery, e.Action, e.Selector, e.Hint, e.Snapshot)
}

func (e *RecoveryError) Is(target error) bool {
	return target == ErrSelectorRecovery
}
