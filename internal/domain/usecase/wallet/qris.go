package wallet

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
)

// SettingQRISImage is the settings key of the deposit QRIS image
const SettingQRISImage = "wallet.qris_image"

// QRIS returns the image users pay deposits to, falling back to the configured default
func (s *Service) QRIS(ctx context.Context) (string, error) {
	v, err := s.settings.Get(ctx, SettingQRISImage)
	if errs.IsNotFoundError(err) {
		return s.cfg.DefaultQRIS, nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// SetQRIS replaces the deposit QRIS image
func (s *Service) SetQRIS(ctx context.Context, imageURL string) error {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return fmt.Errorf("%w: image url is required", errs.ErrInvalidRequest)
	}
	if !strings.HasPrefix(imageURL, "data:image/") {
		u, err := url.Parse(imageURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: image must be an http(s) url or a data uri", errs.ErrInvalidRequest)
		}
	}
	if err := s.settings.Set(ctx, SettingQRISImage, imageURL); err != nil {
		return err
	}
	s.logger.Info("QRIS image updated", nil)
	return nil
}
