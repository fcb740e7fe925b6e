package visual

// fallbackSelectors содержит запасные селекторы для распространенных ролей элементов.
var fallbackSelectors = map[string]string{
	"login-form":      `form, .login-form, [data-testid="login-form"], .form-container`,
	"username-field":  `input[name="username"], input[type="email"], #username, .username-input`,
	"password-field":  `input[name="password"], input[type="password"], #password, .password-input`,
	"login-button":    `button[type="submit"], .login-button, button:has-text("Sign in"), button:has-text("Login")`,
	"submit-button":   `button[type="submit"], .submit-button, .btn-submit`,
	"error-message":   `.error-message, [role="alert"], .alert-error, .error`,
	"success-message": `.success-message, .alert-success, .success`,
	"logo":            `.logo, [alt*="logo"], .brand, .header-logo`,
	"nav":             `nav, .navigation, .nav, [role="navigation"]`,
	"header":          `header, .header, .page-header`,
	"footer":          `footer, .footer, .page-footer`,
	"main":            `main, .main-content, .content, #main`,
}

// FallbackSelector возвращает запасной селектор для известного ключа.
func FallbackSelector(key string) (string, bool) {
	sel, ok := fallbackSelectors[key]
	return sel, ok
}

var (
	importantTags = map[string]bool{
		"button": true, "input": true, "form": true, "nav": true,
		"header": true, "main": true, "aside": true, "footer": true,
	}
	importantClassWords = []string{"btn", "form", "nav", "header", "footer", "modal", "dropdown"}
)
