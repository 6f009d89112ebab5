package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeS3 hält Objekte im Speicher.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func newTestUploader(t *testing.T) (*Uploader, *fakeS3) {
	fake := newFakeS3()
	return &Uploader{Client: fake, Bucket: "evidence", BaseURL: "https://s3.example.org", Logger: zaptest.NewLogger(t)}, fake
}

func TestUploader_Upload(t *testing.T) {
	u, fake := newTestUploader(t)
	link, err := u.Upload(context.Background(), "exports/run/records.json", []byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.org/evidence/exports/run/records.json", link)
	assert.Equal(t, "application/json", fake.types["exports/run/records.json"])
}

func TestUploader_UploadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "records.csv"), []byte("Title\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "merge_report.txt"), []byte("Merge Report:\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	u, fake := newTestUploader(t)
	links, err := u.UploadDir(context.Background(), "exports/abc/", dir)
	require.NoError(t, err)
	assert.Len(t, links, 2)
	assert.Equal(t, "Title\n", string(fake.objects["exports/abc/records.csv"]))
	assert.Contains(t, fake.objects, "exports/abc/merge_report.txt")
}

func TestUploader_RotateKeepsNewest(t *testing.T) {
	u, fake := newTestUploader(t)
	ctx := context.Background()
	for _, ts := range []string{"20240101-000000", "20240102-000000", "20240103-000000", "20240104-000000"} {
		_, err := u.Upload(ctx, "backup-"+ts+".json.gz", []byte("x"))
		require.NoError(t, err)
	}
	_, err := u.Upload(ctx, "exports/other.json", []byte("x"))
	require.NoError(t, err)

	deleted, err := u.Rotate(ctx, "backup-", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"backup-20240101-000000.json.gz", "backup-20240102-000000.json.gz"}, deleted)
	assert.Len(t, fake.objects, 3)

	deleted, err = u.Rotate(ctx, "backup-", 5)
	require.NoError(t, err)
	assert.Empty(t, deleted)
}
