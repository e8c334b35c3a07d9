package s3

import (
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLRoundTrip(t *testing.T) {
	client, err := minio.New("localhost:9000", &minio.Options{
		Creds: credentials.NewStaticV4("key", "secret", ""),
	})
	require.NoError(t, err)
	s := &S3Storage{client: client, bucket: "listing-images"}

	url := s.URL("listings/u/x.png")
	assert.Equal(t, "http://localhost:9000/listing-images/listings/u/x.png", url)

	key, ok := s.KeyFromURL(url)
	assert.True(t, ok)
	assert.Equal(t, "listings/u/x.png", key)

	_, ok = s.KeyFromURL("https://elsewhere/listing-images/a.png")
	assert.False(t, ok)
}
