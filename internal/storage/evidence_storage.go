package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

// Разрешённые типы файлов-доказательств: скриншоты и PDF-отчёты.
var allowedEvidenceMime = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

var (
	ErrEvidenceTooLarge    = errors.New("storage: размер файла превышает лимит")
	ErrEvidenceUnknownType = errors.New("storage: не удалось определить тип файла")
	ErrEvidenceBadType     = errors.New("storage: недопустимый тип файла")
)

// EvidenceStorage — файловое хранилище доказательств, прикрепляемых
// модераторами к предупреждениям. Тип файла определяется по магическим
// байтам, расширению имени не доверяем.
type EvidenceStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// SavedEvidence описывает результат сохранения файла.
type SavedEvidence struct {
	RelativePath string
	Size         int64
	MimeType     string
}

// NewEvidenceStorage создаёт хранилище и каталог под него.
func NewEvidenceStorage(rootPath string, maxUploadMB int64) (*EvidenceStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &EvidenceStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Save проверяет тип файла по магическим байтам, сохраняет его под
// каталогом предупреждения и возвращает относительный путь, размер и MIME.
func (s *EvidenceStorage) Save(ctx context.Context, warningID uuid.UUID, originalName string, r io.Reader) (*SavedEvidence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("storage: не удалось прочитать файл: %w", err)
	}
	head = head[:n]

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return nil, ErrEvidenceUnknownType
	}
	if !allowedEvidenceMime[kind.MIME.Value] {
		return nil, fmt.Errorf("%w: %s", ErrEvidenceBadType, kind.MIME.Value)
	}

	safeName := sanitizeFilename(originalName)
	fileName := fmt.Sprintf("%d_%s", time.Now().UnixNano(), safeName)

	warningDir := filepath.Join(s.rootPath, warningID.String())
	if err := os.MkdirAll(warningDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог предупреждения: %w", err)
	}

	targetPath := filepath.Join(warningDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limitedReader := io.LimitedReader{R: io.MultiReader(bytes.NewReader(head), r), N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limitedReader)
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return nil, ErrEvidenceTooLarge
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return nil, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return &SavedEvidence{
		RelativePath: filepath.ToSlash(filepath.Join(warningID.String(), fileName)),
		Size:         written,
		MimeType:     kind.MIME.Value,
	}, nil
}

// Delete удаляет файл из хранилища.
func (s *EvidenceStorage) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.rootPath, relativePath)
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "evidence"
	}
	return name
}
