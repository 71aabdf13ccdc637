package uploadrepo

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/creditmitra/loanflow/internal/repository"
)

// diskStore writes uploaded documents to a local directory and tracks the
// fileId -> path mapping in memory, mirroring the demo's upload map.
type diskStore struct {
	dir string
	log *zap.Logger

	mu    sync.RWMutex
	files map[string]string
}

func NewDiskStore(dir string, log *zap.Logger) (repository.UploadRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir %s: %w", dir, err)
	}

	return &diskStore{
		dir:   dir,
		log:   log,
		files: make(map[string]string),
	}, nil
}

func (d *diskStore) Store(ctx context.Context, file *multipart.FileHeader) (string, string, error) {
	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	fileID := uuid.New().String()
	safeName := filepath.Base(file.Filename)
	path := filepath.Join(d.dir, fileID+"_"+safeName)

	dst, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("creating upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("writing upload file: %w", err)
	}

	d.mu.Lock()
	d.files[fileID] = path
	d.mu.Unlock()

	d.log.Info("Stored uploaded document",
		zap.String("file_id", fileID),
		zap.String("filename", safeName),
	)

	return fileID, safeName, nil
}

func (d *diskStore) Exists(ctx context.Context, fileID string) bool {
	d.mu.RLock()
	path, ok := d.files[fileID]
	d.mu.RUnlock()

	if !ok {
		return false
	}

	_, err := os.Stat(path)
	return err == nil
}
