// Package specdata читает данные тестов из <dir>/<имя спеки>.data.yaml.
package specdata

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/config"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

type Reader struct {
	path     string
	sections map[string]map[string]string
}

// Open находит файл данных по имени спеки: "tests/login.spec.go" и "login"
// оба ведут к <dir>/login.data.yaml.
func Open(dir, specName string) (*Reader, error) {
	base := filepath.Base(specName)
	if i := strings.Index(base, ".spec"); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	path := filepath.Join(dir, base+".data.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение тестовых данных: %w", err)
	}

	var sections map[string]map[string]string
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("разбор %s: %w", path, err)
	}
	return &Reader{path: path, sections: sections}, nil
}

func (r *Reader) Path() string { return r.path }

// Section возвращает раздел с раскрытыми шаблонами вида {{randomString 4}}.
// Каждый вызов генерирует значения заново.
func (r *Reader) Section(name string) (map[string]string, error) {
	raw, ok := r.sections[name]
	if !ok {
		return nil, &config.MissingError{Source: r.path, Key: name}
	}

	out := make(map[string]string, len(raw))
	for key, value := range raw {
		expanded, err := expand(value)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, key, err)
		}
		out[key] = expanded
	}
	return out, nil
}

// Value возвращает одно поле раздела.
func (r *Reader) Value(section, key string) (string, error) {
	values, err := r.Section(section)
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", &config.MissingError{Source: r.path, Key: section + "." + key}
	}
	return v, nil
}

var funcs = template.FuncMap{
	"randomString": RandomString,
	"randomDigits": func(n int) string { return randomFrom("0123456789", n) },
}

func expand(value string) (string, error) {
	if !strings.Contains(value, "{{") {
		return value, nil
	}
	tmpl, err := template.New("value").Funcs(funcs).Option("missingkey=error").Parse(value)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RandomString возвращает n случайных латинских букв и цифр.
func RandomString(n int) string {
	return randomFrom(alphabet, n)
}

func randomFrom(chars string, n int) string {
	b := make([]byte, n)
	limit := big.NewInt(int64(len(chars)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic(err)
		}
		b[i] = chars[idx.Int64()]
	}
	return string(b)
}
