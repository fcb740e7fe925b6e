package browser

import (
	"strings"

	"github.com/playwright-community/playwright-go"
)

func loadState(state string) *playwright.LoadState {
	switch strings.ToLower(state) {
	case "load":
		return playwright.LoadStateLoad
	case "domcontentloaded":
		return playwright.LoadStateDomcontentloaded
	case "networkidle":
		return playwright.LoadStateNetworkidle
	default:
		return playwright.LoadStateLoad
	}
}
