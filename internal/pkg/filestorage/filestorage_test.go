package filestorage

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestLocalStorage_SaveURLDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ls, err := NewLocalStorage(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	key, err := ls.Save(ctx, fileHeader(t, "transcript.pdf", "grades"), "application_documents/7")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "application_documents/7/"))
	assert.Equal(t, ".pdf", filepath.Ext(key))

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "grades", string(data))

	url, err := ls.URL(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/"+key, url)

	require.NoError(t, ls.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, ls.Delete(ctx, key))
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	assert.Error(t, ls.Delete(context.Background(), "../../etc/passwd"))
	assert.Error(t, ls.Delete(context.Background(), "/etc/passwd"))

	_, err = ls.Save(context.Background(), nil, "x")
	assert.Error(t, err)
}

type fakeObjects struct {
	puts    []*s3.PutObjectInput
	deletes []string
	body    string
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type fakePresigner struct{}

func (fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return &v4.PresignedHTTPRequest{URL: "https://s3.local/" + *in.Bucket + "/" + *in.Key, Method: http.MethodGet}, nil
}

func TestS3Storage_UsesBucket(t *testing.T) {
	ctx := context.Background()
	objects := &fakeObjects{}
	st := &S3Storage{bucket: "docs", client: objects, presign: fakePresigner{}}

	key, err := st.Save(ctx, fileHeader(t, "passport.png", "img"), "application_documents/3")
	require.NoError(t, err)
	require.Len(t, objects.puts, 1)
	assert.Equal(t, "docs", *objects.puts[0].Bucket)
	assert.Equal(t, key, *objects.puts[0].Key)
	assert.Equal(t, "img", objects.body)

	url, err := st.URL(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.local/docs/"+key, url)

	require.NoError(t, st.Delete(ctx, key))
	require.NoError(t, st.Delete(ctx, ""))
	assert.Equal(t, []string{key}, objects.deletes)
}
