package config

import (
	"errors"
	"fmt"
)

// ErrConfigurationMissing возвращается, когда запрошенный ключ тестовых данных
// или конфигурации элементов отсутствует. Ошибка фатальна на этапе подготовки.
var ErrConfigurationMissing = errors.New("configuration missing")

type MissingError struct {
	Source string
	Key    string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s: ключ %q не найден в %s", ErrConfigurationMissing, e.Key, e.Source)
}

func (e *MissingError) Is(target error) bool {
	return target == ErrConfigurationMissing
}
