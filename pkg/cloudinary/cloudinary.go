package cloudinary

import (
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"

	"github.com/creditmitra/loanflow/config"
)

// InitCloudinary builds the Cloudinary client used by the cloudinary upload
// backend. Only called when UPLOAD_BACKEND is "cloudinary".
func InitCloudinary(cfg *config.Config) (*cloudinary.Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CLOUDINARY_CLOUD, cfg.CLOUDINARY_API_KEY, cfg.CLOUDINARY_API_SECRET)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return cld, nil
}
