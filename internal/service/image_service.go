package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"pantry/internal/config"
	"pantry/internal/middleware"
	"pantry/internal/models"
	"pantry/internal/observability"
	"pantry/internal/repository"
	"pantry/internal/storage"

	"github.com/chai2010/webp"
	"go.opentelemetry.io/otel/attribute"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageMaxUploadSizeMB = 10
	// ThumbnailMaxSize bounds both sides of the WebP thumbnail stored next to each image.
	ThumbnailMaxSize = 256
	thumbnailQuality = 70
	// maxImagePixels caps width*height before a full decode allocates the bitmap.
	maxImagePixels = 40_000_000
)

// UploadInput is a file received from a client. ContentType is what the client declared.
type UploadInput struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ImageService validates recipe image uploads and stores them with a thumbnail.
type ImageService struct {
	repo               repository.RecipeRepository
	store              storage.Storage
	paths              *ImagePathGenerator
	maxUploadSizeBytes int64
}

func NewImageService(repo repository.RecipeRepository, store storage.Storage, paths *ImagePathGenerator, cfg *config.Config) *ImageService {
	limitMB := int64(DefaultImageMaxUploadSizeMB)
	if cfg != nil && cfg.ImageMaxUploadSizeMB > 0 {
		limitMB = int64(cfg.ImageMaxUploadSizeMB)
	}
	if paths == nil {
		paths = NewImagePathGenerator(nil)
	}
	return &ImageService{repo: repo, store: store, paths: paths, maxUploadSizeBytes: limitMB << 20}
}

// MaxUploadSizeBytes is the largest accepted upload.
func (s *ImageService) MaxUploadSizeBytes() int64 {
	return s.maxUploadSizeBytes
}

// SetRecipeImage validates and stores an uploaded image for the owner's recipe.
// On any failure the recipe keeps its previous image.
func (s *ImageService) SetRecipeImage(ctx context.Context, ownerID, recipeID uint, in UploadInput) (recipe *models.Recipe, err error) {
	ctx, finish := observability.StartSpan(ctx, "image.set_recipe_image",
		attribute.Int64("recipe.id", int64(recipeID)),
		attribute.Int("upload.bytes", len(in.Content)),
	)
	defer func() {
		finish(err)
		middleware.ImageUploads.WithLabelValues(uploadOutcome(err)).Inc()
	}()

	recipe, err = s.repo.GetForOwner(ctx, ownerID, recipeID)
	if err != nil {
		return nil, err
	}

	decoded, format, err := s.decode(in)
	if err != nil {
		return nil, err
	}

	key := s.paths.GenerateFor(in.Filename, format.ext)
	thumbKey := ThumbnailPath(key)

	thumb, err := encodeWebP(fitWithin(decoded, ThumbnailMaxSize, ThumbnailMaxSize), thumbnailQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.store.Save(ctx, key, bytes.NewReader(in.Content), format.mime); err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.store.Save(ctx, thumbKey, bytes.NewReader(thumb), "image/webp"); err != nil {
		removeImageFiles(ctx, s.store, key)
		return nil, models.NewInternalError(err)
	}

	previous, err := s.repo.SetImage(ctx, ownerID, recipeID, key)
	if err != nil {
		removeImageFiles(ctx, s.store, key)
		return nil, err
	}
	if previous != "" && previous != key {
		removeImageFiles(ctx, s.store, previous)
	}

	middleware.Logger.InfoContext(ctx, "recipe image stored",
		slog.Uint64("recipe_id", uint64(recipeID)),
		slog.String("key", key),
		slog.String("format", format.ext),
	)
	recipe.Image = key
	return recipe, nil
}

func notAnImage() error {
	return models.NewInvalidImageError("Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
}

// imageFormat describes an accepted upload format, keyed by image.Decode's format name.
type imageFormat struct {
	mime string
	ext  string
}

var imageFormats = map[string]imageFormat{
	"jpeg": {mime: "image/jpeg", ext: "jpg"},
	"png":  {mime: "image/png", ext: "png"},
	"gif":  {mime: "image/gif", ext: "gif"},
	"webp": {mime: "image/webp", ext: "webp"},
}

// decode checks size and content of an upload and returns the decoded image.
// A client-declared image/* content type must agree with the actual content.
func (s *ImageService) decode(in UploadInput) (image.Image, imageFormat, error) {
	switch {
	case len(in.Content) == 0:
		return nil, imageFormat{}, models.NewInvalidImageError("The submitted file is empty.")
	case int64(len(in.Content)) > s.maxUploadSizeBytes:
		return nil, imageFormat{}, models.NewInvalidImageError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes>>20))
	case !acceptedMIME(http.DetectContentType(in.Content)):
		return nil, imageFormat{}, notAnImage()
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(in.Content))
	if err != nil {
		return nil, imageFormat{}, notAnImage()
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, imageFormat{}, models.NewInvalidImageError(
			fmt.Sprintf("Image dimensions %dx%d exceed the %d pixel limit.", cfg.Width, cfg.Height, maxImagePixels))
	}

	img, name, err := image.Decode(bytes.NewReader(in.Content))
	format, ok := imageFormats[name]
	if err != nil || !ok {
		return nil, imageFormat{}, notAnImage()
	}
	if declared := mediaType(in.ContentType); strings.HasPrefix(declared, "image/") && declared != format.mime {
		return nil, imageFormat{}, models.NewInvalidImageError("Image content type mismatch")
	}
	return img, format, nil
}

func uploadOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case models.IsCode(err, models.CodeInvalidImage):
		return "invalid"
	case models.IsCode(err, models.CodeNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// mediaType lowercases a Content-Type, drops its parameters and maps image/jpg to image/jpeg.
func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.TrimSpace(contentType)
	}
	mt = strings.ToLower(mt)
	if mt == "image/jpg" {
		return "image/jpeg"
	}
	return mt
}

func acceptedMIME(contentType string) bool {
	mt := mediaType(contentType)
	for _, f := range imageFormats {
		if f.mime == mt {
			return true
		}
	}
	return false
}

// fitWithin scales src down, keeping its aspect ratio, so it fits a maxW x maxH box.
// Images that already fit are returned unchanged.
func fitWithin(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || (w <= maxW && h <= maxH) {
		return src
	}

	// Compare w/maxW against h/maxH without floating point.
	var dw, dh int
	if w*maxH >= h*maxW {
		dw, dh = maxW, h*maxW/w
	} else {
		dw, dh = w*maxH/h, maxH
	}
	dst := image.NewRGBA(image.Rect(0, 0, max(dw, 1), max(dh, 1)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

func encodeWebP(img image.Image, quality float32) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
