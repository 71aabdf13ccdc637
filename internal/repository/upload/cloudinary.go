package uploadrepo

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"sync"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/creditmitra/loanflow/internal/repository"
)

const salarySlipFolder = "salary-slips"

// cloudinaryStore is the hosted alternative to diskStore for deployments
// without a writable filesystem. Presence is tracked by the returned
// fileId -> secure URL mapping.
type cloudinaryStore struct {
	client *cloudinary.Cloudinary
	log    *zap.Logger

	mu   sync.RWMutex
	urls map[string]string
}

func NewCloudinaryStore(client *cloudinary.Cloudinary, log *zap.Logger) repository.UploadRepository {
	return &cloudinaryStore{
		client: client,
		log:    log,
		urls:   make(map[string]string),
	}
}

func (c *cloudinaryStore) Store(ctx context.Context, file *multipart.FileHeader) (string, string, error) {
	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	fileID := uuid.New().String()
	safeName := filepath.Base(file.Filename)

	result, err := c.client.Upload.Upload(ctx, src, uploader.UploadParams{
		Folder:   salarySlipFolder,
		PublicID: fileID,
	})
	if err != nil {
		return "", "", fmt.Errorf("uploading to cloudinary: %w", err)
	}

	c.mu.Lock()
	c.urls[fileID] = result.SecureURL
	c.mu.Unlock()

	c.log.Info("Uploaded document to cloudinary",
		zap.String("file_id", fileID),
		zap.String("filename", safeName),
	)

	return fileID, safeName, nil
}

func (c *cloudinaryStore) Exists(ctx context.Context, fileID string) bool {
	c.mu.RLock()
	_, ok := c.urls[fileID]
	c.mu.RUnlock()

	return ok
}
