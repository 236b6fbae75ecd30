package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"toyWholesale/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalStorage_Save(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/uploads", zap.NewNop())
	require.NoError(t, err)

	url, err := s.Save(context.Background(), KindLogo, "Logo.PNG", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/logos/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestLocalStorage_UniqueNames(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads/", zap.NewNop())
	require.NoError(t, err)

	a, err := s.Save(context.Background(), KindProduct, "toy.jpg", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := s.Save(context.Background(), KindProduct, "toy.jpg", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestLocalStorage_Rejects(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads/", zap.NewNop())
	require.NoError(t, err)

	_, err = s.Save(context.Background(), KindLogo, "script.sh", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = s.Save(context.Background(), "../etc", "a.png", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestLocalStorage_Remove(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/uploads/", zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	url, err := s.Save(ctx, KindLogo, "logo.png", strings.NewReader("png"))
	require.NoError(t, err)
	require.NoError(t, s.Remove(ctx, url))
	_, err = os.Stat(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	assert.True(t, os.IsNotExist(err))

	// already gone
	assert.NoError(t, s.Remove(ctx, url))

	for _, foreign := range []string{
		"https://cdn.example.by/logos/a.png",
		"/uploads/../config.yaml",
		"/uploads/logos/../../secret.png",
		"/uploads/other/a.png",
		"/uploads/logos/",
	} {
		assert.ErrorIs(t, s.Remove(ctx, foreign), ErrForeignURL, foreign)
	}
}

func TestNew_SelectsDriver(t *testing.T) {
	s, err := New(context.Background(), config.StorageConfig{Driver: "local", Dir: t.TempDir(), PublicPrefix: "/uploads/"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	s3s, err := New(context.Background(), config.StorageConfig{Driver: "s3", S3: config.S3Config{
		Bucket: "toys", Region: "us-east-1", Endpoint: "http://localhost:9000",
		AccessKey: "key", SecretKey: "secret", UsePathStyle: true,
	}}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/toys", s3s.(*S3Storage).publicURL)

	_, err = New(context.Background(), config.StorageConfig{Driver: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}
