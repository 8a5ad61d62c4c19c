package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog/log"
)

// CloudinaryStore uploads check-in document photos to Cloudinary.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore builds a client from the account credentials.
func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(fmt.Sprintf("cloudinary://%s:%s@%s", apiKey, apiSecret, cloudName))
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	log.Info().Str("cloud", cloudName).Str("folder", folder).Msg("🔧 Cloudinary uploads enabled")
	return &CloudinaryStore{cld: cld, folder: folder}, nil
}

// Upload stores r under <folder>/<subfolder>/<name> and returns its HTTPS URL.
func (s *CloudinaryStore) Upload(ctx context.Context, r io.Reader, subfolder, name string) (string, error) {
	overwrite := true
	unique := false
	up, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         s.folder + "/" + subfolder,
		PublicID:       name,
		Overwrite:      &overwrite,
		UniqueFilename: &unique,
		ResourceType:   "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if up.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", up.Error.Message)
	}
	log.Info().Str("url", up.SecureURL).Msg("📸 Document photo uploaded")
	return up.SecureURL, nil
}
