package visual

import "strings"

// DefaultCategory используется, когда имя теста не подсказывает категорию.
// Исторически набор вырос из тестов входа.
const DefaultCategory = "login"

var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"login", []string{"login", "authentication", "signin", "credentials", "username", "password"}},
	{"appointment", []string{"appointment", "schedule", "booking"}},
	{"navigation", []string{"navigation", "menu", "nav"}},
	{"registration", []string{"registration", "signup", "register"}},
	{"login", []string{"ailogin", "ai-login", "login.spec"}},
}

// CategoryFromTestName определяет категорию по ключевым словам в имени теста.
// Порядок проверки важен: первая совпавшая группа побеждает.
func CategoryFromTestName(name string) string {
	lower := strings.ToLower(name)
	for _, group := range categoryKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.category
			}
		}
	}
	return DefaultCategory
}
