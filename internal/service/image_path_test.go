package service

import (
	"bytes"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func decodeForTest(data []byte) (image.Image, string, error) {
	return image.Decode(bytes.NewReader(data))
}

func TestImagePathGenerator_Generate(t *testing.T) {
	t.Parallel()
	gen := NewImagePathGenerator(func() string { return "test-uuid" })

	tests := []struct {
		filename string
		want     string
	}{
		{"myimage.jpg", "uploads/recipes/test-uuid.jpg"},
		{"archive.tar.gz", "uploads/recipes/test-uuid.gz"},
		{"dir/photo.PNG", "uploads/recipes/test-uuid.PNG"},
		{"noext", "uploads/recipes/test-uuid"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, gen.Generate(tt.filename), tt.filename)
	}
}

func TestImagePathGenerator_GenerateFor(t *testing.T) {
	t.Parallel()
	gen := NewImagePathGenerator(func() string { return "u" })

	assert.Equal(t, "uploads/recipes/u.jpeg", gen.GenerateFor("a.jpeg", "jpg"))
	assert.Equal(t, "uploads/recipes/u.png", gen.GenerateFor("blob", "png"))
	assert.Equal(t, "uploads/recipes/u.png", gen.GenerateFor("weird.p/g", "png"))
	assert.Equal(t, "uploads/recipes/u.gif", gen.GenerateFor("trailing.", "gif"))
}

func TestImagePathGenerator_DefaultIsUnique(t *testing.T) {
	t.Parallel()
	gen := NewImagePathGenerator(nil)
	a := gen.Generate("x.jpg")
	b := gen.Generate("x.jpg")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, RecipeImageDir+"/"))
}

func TestThumbnailPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "uploads/recipes/abc.thumb.webp", ThumbnailPath("uploads/recipes/abc.jpg"))
	assert.Equal(t, "uploads/recipes/abc.thumb.webp", ThumbnailPath("uploads/recipes/abc"))
}
