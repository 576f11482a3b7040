package storage

import (
	"testing"

	"anoa.com/courseplatform/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPublicID(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v123456789/course_platform/thumb.webp": "course_platform/thumb",
		"https://res.cloudinary.com/demo/image/upload/course_platform/thumb.webp":            "course_platform/thumb",
		"https://res.cloudinary.com/demo/image/upload/videos/intro.webp":                     "videos/intro",
		"https://example.com/images/thumb.png":                                               "",
		"://broken":                                                                          "",
	}

	for in, want := range cases {
		assert.Equal(t, want, ExtractPublicID(in), in)
	}
}

func TestNewCloudinaryStorageRequiresCredentials(t *testing.T) {
	_, err := NewCloudinaryStorage(&config.Config{})
	require.Error(t, err)

	s, err := NewCloudinaryStorage(&config.Config{
		CloudinaryCloudName: "demo",
		CloudinaryAPIKey:    "key",
		CloudinaryAPISecret: "secret",
	})
	require.NoError(t, err)
	assert.NotNil(t, s)
}
