package visual

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
)

// ImageStore хранит PNG файлы в каталоге: эталоны или результаты сравнений.
type ImageStore struct {
	dir string
}

func NewImageStore(dir string) *ImageStore {
	return &ImageStore{dir: dir}
}

func (s *ImageStore) Dir() string {
	return s.dir
}

func (s *ImageStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Load читает изображение. ok == false, если файла нет.
func (s *ImageStore) Load(name string) (image.Image, bool, error) {
	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("чтение %s: %w", name, err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("декодирование %s: %w", name, err)
	}
	return img, true, nil
}

func (s *ImageStore) SaveBytes(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("создание каталога %s: %w", s.dir, err)
	}
	path := s.Path(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("запись %s: %w", path, err)
	}
	return path, nil
}

func (s *ImageStore) Save(name string, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("кодирование %s: %w", name, err)
	}
	return s.SaveBytes(name, buf.Bytes())
}

func decodePNG(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("декодирование снимка: %w", err)
	}
	return img, nil
}
