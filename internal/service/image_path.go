package service

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// RecipeImageDir is the storage prefix for recipe images.
const RecipeImageDir = "uploads/recipes"

const thumbnailSuffix = ".thumb.webp"

// UUIDSource returns a fresh unique identifier for each call.
type UUIDSource func() string

// ImagePathGenerator derives collision-free storage keys for uploaded recipe images.
type ImagePathGenerator struct {
	newUUID UUIDSource
}

// NewImagePathGenerator uses src for identifiers, or random v4 UUIDs when src is nil.
func NewImagePathGenerator(src UUIDSource) *ImagePathGenerator {
	if src == nil {
		src = uuid.NewString
	}
	return &ImagePathGenerator{newUUID: src}
}

// Generate returns uploads/recipes/<uuid>.<ext>, where ext is the text after
// the last "." of originalFilename. A name without a "." yields no extension.
func (g *ImagePathGenerator) Generate(originalFilename string) string {
	id := g.newUUID()
	ext, ok := extension(originalFilename)
	if !ok {
		return path.Join(RecipeImageDir, id)
	}
	return path.Join(RecipeImageDir, id+"."+ext)
}

// GenerateFor is Generate with fallbackExt used when the filename has no
// usable extension (missing, empty or not purely alphanumeric).
func (g *ImagePathGenerator) GenerateFor(originalFilename, fallbackExt string) string {
	ext, ok := extension(originalFilename)
	if !ok || !isAlphanumeric(ext) {
		return path.Join(RecipeImageDir, g.newUUID()+"."+fallbackExt)
	}
	return g.Generate(originalFilename)
}

// ThumbnailPath returns the key of the WebP thumbnail stored beside imagePath.
func ThumbnailPath(imagePath string) string {
	base := imagePath
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base + thumbnailSuffix
}

func extension(filename string) (string, bool) {
	filename = path.Base(strings.ReplaceAll(filename, "\\", "/"))
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return "", false
	}
	return filename[i+1:], true
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
