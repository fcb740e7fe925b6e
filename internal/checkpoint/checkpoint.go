// Package checkpoint накапливает независимые проверки теста и сообщает
// о провалах одной ошибкой в конце.
package checkpoint

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrCheckpointsFailed возвращается из AssertAll, если провалилась хотя бы одна проверка.
var ErrCheckpointsFailed = errors.New("checkpoints failed")

type Entry struct {
	ID      string
	Message string
	Err     error
}

func (e Entry) Passed() bool { return e.Err == nil }

func (e Entry) String() string {
	if e.Err == nil {
		return fmt.Sprintf("ID: %s: %s", e.ID, e.Message)
	}
	return fmt.Sprintf("ID: %s: %s - %v", e.ID, e.Message, e.Err)
}

// AggregateError перечисляет все проверки последнего AssertAll.
type AggregateError struct {
	Passed []Entry
	Failed []Entry
	Report string
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("тест провален, проваленных проверок: %d. Подробности:%s", len(e.Failed), e.Report)
}

func (e *AggregateError) Is(target error) bool {
	return target == ErrCheckpointsFailed
}

// Unwrap отдает ошибки проваленных проверок для errors.Is/As.
func (e *AggregateError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		errs = append(errs, f.Err)
	}
	return errs
}

type Manager struct {
	mu      sync.Mutex
	entries []Entry
	log     *zap.Logger
}

func New(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{log: log.Named("checkpoint")}
}

// allFields разрешает go-cmp сравнивать неэкспортируемые поля структур
// вместо паники.
var allFields = cmp.Exporter(func(reflect.Type) bool { return true })

// Check сравнивает actual и expected через go-cmp. Провал не прерывает тест.
func (m *Manager) Check(id string, actual, expected any, message string) {
	var err error
	if diff := cmp.Diff(expected, actual, allFields); diff != "" {
		err = fmt.Errorf("ожидалось %v, получено %v (-ожидалось +получено):\n%s", expected, actual, diff)
	}
	m.add(Entry{ID: id, Message: message, Err: err})
}

// CheckFunc записывает результат произвольной проверки. Паника внутри fn
// считается провалом.
func (m *Manager) CheckFunc(id string, fn func() error, message string) {
	m.add(Entry{ID: id, Message: message, Err: safeCall(fn)})
}

func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("паника: %v", r)
		}
	}()
	return fn()
}

func (m *Manager) add(e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
}

// Len возвращает число накопленных проверок.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// AssertAll пишет отчет и возвращает *AggregateError, если есть провалы.
// Накопитель очищается в любом случае.
func (m *Manager) AssertAll() error {
	m.mu.Lock()
	entries := m.entries
	m.entries = nil
	m.mu.Unlock()

	var passed, failed []Entry
	var errs error
	for _, e := range entries {
		if e.Passed() {
			passed = append(passed, e)
			continue
		}
		failed = append(failed, e)
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", e.ID, e.Err))
	}

	report := buildReport(passed, failed)
	m.log.Info("итог проверок",
		zap.Int("total", len(entries)),
		zap.Int("passed", len(passed)),
		zap.Int("failed", len(failed)))
	m.log.Debug(report)

	if errs == nil {
		return nil
	}
	m.log.Error("есть проваленные проверки", zap.Errors("failures", multierr.Errors(errs)))
	return &AggregateError{Passed: passed, Failed: failed, Report: report}
}

func buildReport(passed, failed []Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nВыполнено проверок: <%d>, прошло <%d>, провалено <%d>\n",
		len(passed)+len(failed), len(passed), len(failed))
	section := func(title string, entries []Entry) {
		if len(entries) == 0 {
			return
		}
		b.WriteString(" **** " + title + " **** \n")
		for _, e := range entries {
			b.WriteString(e.String() + "\n")
		}
	}
	section("Пройденные проверки", passed)
	section("Проваленные проверки", failed)
	return b.String()
}
