package util

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func responseWith(encoding string, body []byte) *http.Response {
	header := http.Header{}
	if encoding != "" {
		header.Set("Content-Encoding", encoding)
	}
	return &http.Response{Header: header, Body: io.NopCloser(bytes.NewReader(body))}
}

func TestGetBodyDecompresses(t *testing.T) {
	plain := []byte(`{"message":"ok"}`)

	var gz bytes.Buffer
	gzWriter := gzip.NewWriter(&gz)
	_, _ = gzWriter.Write(plain)
	require.NoError(t, gzWriter.Close())

	var fl bytes.Buffer
	flWriter, err := flate.NewWriter(&fl, flate.DefaultCompression)
	require.NoError(t, err)
	_, _ = flWriter.Write(plain)
	require.NoError(t, flWriter.Close())

	var br bytes.Buffer
	brWriter := brotli.NewWriter(&br)
	_, _ = brWriter.Write(plain)
	require.NoError(t, brWriter.Close())

	cases := map[string][]byte{
		"":         plain,
		"identity": plain,
		"gzip":     gz.Bytes(),
		"deflate":  fl.Bytes(),
		"br":       br.Bytes(),
		"zstd":     plain, // unknown encodings pass through
	}
	for encoding, raw := range cases {
		t.Run("encoding="+encoding, func(t *testing.T) {
			body, e := GetBody(responseWith(encoding, raw), "http://example.test")
			require.Nil(t, e)
			assert.Equal(t, plain, body)
		})
	}
}

func TestGetBodyBadGzip(t *testing.T) {
	_, e := GetBody(responseWith("gzip", []byte("not gzip")), "http://example.test")
	assert.NotNil(t, e)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(5, 0, 10))
	assert.Equal(t, 0, Clamp(-3, 0, 10))
	assert.Equal(t, 1.5, Clamp(9.0, 0.0, 1.5))
}

func TestPtr(t *testing.T) {
	p := Ptr(42)
	require.NotNil(t, p)
	assert.Equal(t, 42, *p)
	*p = 1
	assert.NotSame(t, p, Ptr(42))
}

func TestWaitForSecondsHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NotNil(t, WaitForSeconds(ctx, 10))
	assert.Nil(t, WaitForSeconds(context.Background(), 0.001))
}
