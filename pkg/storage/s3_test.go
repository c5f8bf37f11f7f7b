package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string]string
	types   map[string]string
	failPut bool
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut {
		return nil, errors.New("access denied")
	}
	b, _ := io.ReadAll(in.Body)
	f.objects[aws.ToString(in.Key)] = string(b)
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_PutAndDelete(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{}, types: map[string]string{}}
	store := newS3Store(fake, "sunflower", "https://cdn.example.com/")

	url, err := store.Put(context.Background(), "avatars/u1.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/u1.png", url)
	assert.Equal(t, "png", fake.objects["avatars/u1.png"])
	assert.Equal(t, "image/png", fake.types["avatars/u1.png"])

	assert.Equal(t, "avatars/u1.png", store.KeyFromURL(url))
	assert.Equal(t, "", store.KeyFromURL("https://gravatar.com/x.png"))

	require.NoError(t, store.Delete(context.Background(), "avatars/u1.png"))
	assert.Empty(t, fake.objects)
}

func TestS3Store_PutError(t *testing.T) {
	store := newS3Store(&fakeS3{failPut: true}, "b", "https://b")
	_, err := store.Put(context.Background(), "k", "image/png", strings.NewReader(""))
	assert.ErrorContains(t, err, "access denied")
}
