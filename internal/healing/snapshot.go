package healing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser"
)

// SnapshotStore хранит HTML снимки страницы как <dir>/<name>.html.
// Снимок с тем же именем перезаписывается, удалением никто не занимается.
type SnapshotStore struct {
	dir string
}

func NewSnapshotStore(dir string) *SnapshotStore {
	if dir == "" {
		dir = "snapshots"
	}
	return &SnapshotStore{dir: dir}
}

func (s *SnapshotStore) Dir() string {
	return s.dir
}

func (s *SnapshotStore) Path(name string) string {
	return filepath.Join(s.dir, snapshotFileName(name)+".html")
}

// Capture дожидается load, читает разметку и записывает ее на диск.
func (s *SnapshotStore) Capture(ctx context.Context, page browser.Page, name string) (string, error) {
	if err := page.WaitForLoadState(ctx, "load"); err != nil {
		return "", fmt.Errorf("ожидание загрузки страницы: %w", err)
	}

	content, err := page.Content(ctx)
	if err != nil {
		return "", fmt.Errorf("чтение разметки: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("создание каталога снимков: %w", err)
	}

	path := s.Path(name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("запись снимка %s: %w", path, err)
	}
	return path, nil
}

func (s *SnapshotStore) Read(name string) (string, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return "", fmt.Errorf("чтение снимка: %w", err)
	}
	return string(data), nil
}

func snapshotFileName(name string) string {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".html")
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '-'
	}, name)
	clean = strings.Trim(clean, ".")
	if clean == "" {
		return "snapshot"
	}
	return clean
}
