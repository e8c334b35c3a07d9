package validation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

const MaxImageBytes = 5 << 20

const (
	MsgImageType     = "Tipo de archivo no permitido. Solo se permiten JPG, PNG y WebP."
	MsgImageTooLarge = "El archivo es demasiado grande. Máximo 5MB por imagen."
	MsgImageInvalid  = "El archivo no es una imagen válida."
	MsgImageError    = "Error al validar la imagen. Por favor, intenta de nuevo."
)

// Rejection reasons, used as metric labels.
const (
	ReasonType   = "type"
	ReasonSize   = "size"
	ReasonDecode = "decode"
	ReasonError  = "error"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

var errDecoderPanic = errors.New("decoder panic")

type MediaResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	Reason  string `json:"-"`
}

// DecodeFunc decodes enough of r to prove it is an image.
type DecodeFunc func(r io.Reader) error

// DecodeConfig is the default DecodeFunc: it reads the image header with the
// registered JPEG, PNG and WebP decoders and rejects empty dimensions.
func DecodeConfig(r io.Reader) error {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.New("image has no pixels")
	}
	return nil
}

type MediaValidator struct {
	decode DecodeFunc
	logger *logger.Logger
}

func NewMediaValidator(decode DecodeFunc, log *logger.Logger) *MediaValidator {
	if decode == nil {
		decode = DecodeConfig
	}
	return &MediaValidator{decode: decode, logger: log.Named("MediaValidator")}
}

// ContentType normalizes the declared type of img, sniffing the bytes when
// none was declared.
func ContentType(img domain.Image) string {
	ct := strings.TrimSpace(img.ContentType)
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(img.Data)
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return strings.ToLower(mt)
	}
	return strings.ToLower(ct)
}

// Validate checks size, then type, then decodability. Size and type failures
// return without touching the decoder. Anything unexpected fails closed.
func (v *MediaValidator) Validate(ctx context.Context, img domain.Image) MediaResult {
	if img.Size() > MaxImageBytes {
		return MediaResult{Message: MsgImageTooLarge, Reason: ReasonSize}
	}
	if !allowedImageTypes[ContentType(img)] {
		return MediaResult{Message: MsgImageType, Reason: ReasonType}
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%w: %v", errDecoderPanic, r)
			}
		}()
		done <- v.decode(bytes.NewReader(img.Data))
	}()

	select {
	case err := <-done:
		if err == nil {
			return MediaResult{Valid: true}
		}
		if errors.Is(err, errDecoderPanic) {
			v.logger.Error("Image decoder crashed", zap.String("name", img.Name), zap.Error(err))
			return MediaResult{Message: MsgImageError, Reason: ReasonError}
		}
		v.logger.Debug("Image failed to decode", zap.String("name", img.Name), zap.Error(err))
		return MediaResult{Message: MsgImageInvalid, Reason: ReasonDecode}
	case <-ctx.Done():
		v.logger.Warn("Image validation interrupted", zap.String("name", img.Name), zap.Error(ctx.Err()))
		return MediaResult{Message: MsgImageError, Reason: ReasonError}
	}
}

// ValidateAll checks every image concurrently. A failing image never cancels
// the others; results are indexed like images.
func (v *MediaValidator) ValidateAll(ctx context.Context, images []domain.Image) []MediaResult {
	results := make([]MediaResult, len(images))
	g, gctx := errgroup.WithContext(ctx)
	for i := range images {
		g.Go(func() error {
			results[i] = v.Validate(gctx, images[i])
			return nil
		})
	}
	_ = g.Wait()
	return results
}
