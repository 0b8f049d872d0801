package client

import (
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}

func TestFormEncode(t *testing.T) {
	fields := url.Values{}
	fields.Set("email", "a@b.com")
	fields.Set("password", "x")

	r, contentType, err := Form(fields).encode()
	require.NoError(t, err)
	assert.Equal(t, "application/x-www-form-urlencoded", contentType)

	raw, err := io.ReadAll(r)
	require.NoError(t, err)
	parsed, err := url.ParseQuery(string(raw))
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", parsed.Get("email"))
	assert.Equal(t, "x", parsed.Get("password"))
}

func TestMultipartEncode(t *testing.T) {
	body := Multipart(
		Part{Field: "caption", Data: []byte("my picture")},
		Part{Field: "picture", Filename: "avatar.png", Data: pngHeader},
	)

	r, contentType, err := body.encode()
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)
	require.NotEmpty(t, params["boundary"])

	mr := multipart.NewReader(r, params["boundary"])

	field, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "caption", field.FormName())
	fieldData, _ := io.ReadAll(field)
	assert.Equal(t, "my picture", string(fieldData))

	file, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "picture", file.FormName())
	assert.Equal(t, "avatar.png", file.FileName())
	assert.Equal(t, "image/png", file.Header.Get("Content-Type"))

	_, err = mr.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestSniffContentType(t *testing.T) {
	assert.Equal(t, "image/png", sniffContentType(pngHeader))
	assert.Equal(t, "application/octet-stream", sniffContentType([]byte("plain text")))
	assert.Equal(t, "application/octet-stream", sniffContentType(nil))
}

func TestFormEncodeEmpty(t *testing.T) {
	r, contentType, err := Form(url.Values{}).encode()
	require.NoError(t, err)
	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	raw, _ := io.ReadAll(r)
	assert.Equal(t, "", strings.TrimSpace(string(raw)))
}
