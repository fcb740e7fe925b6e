// Package browsertest содержит страницу в памяти для тестов движков лечения
// и визуальных проверок. Разметка разбирается goquery, CSS селекторы
// сопоставляются cascadia; XPath не поддерживается и ничего не находит.
package browsertest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser"
)

var hasTextPattern = regexp.MustCompile(`^(.*?):has-text\((?:"([^"]*)"|'([^']*)')\)$`)

type Page struct {
	mu  sync.Mutex
	doc *goquery.Document
	raw string

	URL       string
	Viewport  browser.ViewportBounds
	UserAgent string

	// Shots хранит очереди снимков по селектору (пустой селектор для всей страницы). Последний
	// снимок в очереди повторяется бесконечно.
	Shots    map[string][][]byte
	Hidden   map[string]bool
	CountErr error

	Clicks       []string
	Fills        map[string]string
	LoadStates   []string
	ContentCalls int
	ShotCalls    map[string]int
}

var _ browser.Page = (*Page)(nil)

func New(html string) *Page {
	p := &Page{
		URL:       "https://portal.test/login",
		Viewport:  browser.ViewportBounds{Width: 1280, Height: 720},
		UserAgent: "browsertest",
		Shots:     map[string][][]byte{},
		Hidden:    map[string]bool{},
		Fills:     map[string]string{},
		ShotCalls: map[string]int{},
	}
	p.SetHTML(html)
	return p
}

func (p *Page) SetHTML(html string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		panic(fmt.Sprintf("browsertest: разбор разметки: %v", err))
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.doc = doc
	p.raw = html
}

// SetShots задает очередь снимков для селектора.
func (p *Page) SetShots(selector string, shots ...[]byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Shots[selector] = shots
}

func (p *Page) find(root *goquery.Selection, selector string) *goquery.Selection {
	selector = strings.TrimSpace(selector)
	if browser.KindOf(selector) == browser.KindXPath {
		return root.Find("never-matches-anything")
	}
	if strings.HasPrefix(selector, "text=") {
		text := strings.Trim(strings.TrimPrefix(selector, "text="), `"'`)
		return root.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.Contains(ownText(s), text)
		})
	}

	// Группы без :has-text cascadia разбирает сама, сохраняя порядок документа.
	parts := splitGroup(selector)
	if len(parts) > 1 && strings.Contains(selector, ":has-text") {
		result := root.Find("never-matches-anything")
		for _, part := range parts {
			result = result.AddSelection(p.find(root, part))
		}
		return result
	}

	if m := hasTextPattern.FindStringSubmatch(selector); m != nil {
		base := m[1]
		if base == "" {
			base = "*"
		}
		text := m[2] + m[3]
		return root.Find(base).FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.Contains(s.Text(), text)
		})
	}
	return root.Find(selector)
}

func (p *Page) match(selector string) *goquery.Selection {
	return p.find(p.doc.Selection, selector)
}

func (p *Page) Count(ctx context.Context, selector string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.CountErr != nil {
		return 0, p.CountErr
	}
	return p.match(selector).Length(), nil
}

func (p *Page) Click(ctx context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.match(selector).Length() == 0 {
		return fmt.Errorf("элемент %q не найден", selector)
	}
	p.Clicks = append(p.Clicks, selector)
	return nil
}

func (p *Page) Fill(ctx context.Context, selector, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.match(selector).Length() == 0 {
		return fmt.Errorf("элемент %q не найден", selector)
	}
	p.Fills[selector] = text
	return nil
}

func (p *Page) IsVisible(ctx context.Context, selector string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible(selector), nil
}

func (p *Page) visible(selector string) bool {
	if p.Hidden[selector] {
		return false
	}
	sel := p.match(selector).First()
	if sel.Length() == 0 {
		return false
	}
	return isVisible(sel)
}

func (p *Page) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.visible(selector) {
		return &browser.TimeoutError{Selector: selector, State: "visible", Timeout: timeout}
	}
	return nil
}

func (p *Page) WaitForLoadState(ctx context.Context, state string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.LoadStates = append(p.LoadStates, state)
	return nil
}

func (p *Page) Content(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ContentCalls++
	return p.raw, nil
}

func (p *Page) Screenshot(ctx context.Context, selector string, opts browser.ScreenshotOptions) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if selector != "" && p.match(selector).Length() == 0 {
		return nil, fmt.Errorf("элемент %q не найден", selector)
	}
	p.ShotCalls[selector]++

	queue := p.Shots[selector]
	switch len(queue) {
	case 0:
		return SolidPNG(40, 20, color.White), nil
	case 1:
		return queue[0], nil
	default:
		p.Shots[selector] = queue[1:]
		return queue[0], nil
	}
}

func (p *Page) QueryElements(ctx context.Context, scope, selector string) ([]browser.ElementInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	root := p.doc.Selection
	if scope != "" {
		root = p.match(scope).First()
	}

	var out []browser.ElementInfo
	p.find(root, selector).Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		info := browser.ElementInfo{
			Tag:     goquery.NodeName(s),
			Text:    strings.TrimSpace(s.Text()),
			Attrs:   map[string]string{},
			Visible: isVisible(s),
		}
		for _, attr := range node.Attr {
			info.Attrs[attr.Key] = attr.Val
		}
		out = append(out, info)
	})
	return out, nil
}

func (p *Page) Info(ctx context.Context) (browser.PageInfo, error) {
	return browser.PageInfo{URL: p.URL, Viewport: p.Viewport, UserAgent: p.UserAgent}, nil
}

func isVisible(s *goquery.Selection) bool {
	for cur := s; cur.Length() > 0; cur = cur.Parent() {
		if _, hidden := cur.Attr("hidden"); hidden {
			return false
		}
		style, _ := cur.Attr("style")
		if strings.Contains(strings.ReplaceAll(style, " ", ""), "display:none") {
			return false
		}
	}
	return true
}

func ownText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
		}
	})
	return strings.TrimSpace(b.String())
}

// splitGroup делит список селекторов по запятым верхнего уровня.
func splitGroup(selector string) []string {
	var parts []string
	depth := 0
	var quote rune
	start := 0
	for i, r := range selector {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(' || r == '[':
			depth++
		case r == ')' || r == ']':
			depth--
		case r == ',' && depth == 0:
			parts = append(parts, strings.TrimSpace(selector[start:i]))
			start = i + 1
		}
	}
	return append(parts, strings.TrimSpace(selector[start:]))
}

// SolidPNG кодирует однотонное изображение.
func SolidPNG(w, h int, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return EncodePNG(img)
}

func EncodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
