package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu       sync.Mutex
	objects  map[string][]byte
	types    map[string]string
	putCalls int
	putFails int // fail this many Put calls before succeeding
	getErr   error
	delErr   error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.putCalls <= m.putFails {
		return nil, errors.New("transient upload failure")
	}
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	if input.ContentType != nil {
		m.types[*input.Key] = *input.ContentType
	}
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	ct := m.types[*input.Key]
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(strings.NewReader(string(data))),
		ContentType: &ct,
	}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.delErr != nil {
		return nil, m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func newTestStore(mock *mockS3Client) *Store {
	st := NewStore(Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"})
	st.client = mock
	return st
}

func TestPutGetDelete(t *testing.T) {
	mock := newMockS3()
	st := newTestStore(mock)
	ctx := context.Background()

	data := []byte("fake-jpeg-bytes")
	key := PhotoKey(1, 2, "abc123.jpg")

	if err := st.Put(ctx, key, bytes.NewReader(data), "image/jpeg", int64(len(data))); err != nil {
		t.Fatalf("put: %v", err)
	}

	body, contentType, err := st.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer body.Close()

	got, _ := io.ReadAll(body)
	if !bytes.Equal(got, data) {
		t.Errorf("got %q, want %q", got, data)
	}
	if contentType != "image/jpeg" {
		t.Errorf("content type = %q, want image/jpeg", contentType)
	}

	if err := st.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := st.Get(ctx, key); err == nil {
		t.Error("expected error getting deleted photo")
	}
}

func TestPutRetriesTransientFailures(t *testing.T) {
	mock := newMockS3()
	mock.putFails = 2
	st := newTestStore(mock)

	data := []byte("photo")
	err := st.Put(context.Background(), "k", bytes.NewReader(data), "image/png", int64(len(data)))
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	mock.mu.Lock()
	calls := mock.putCalls
	stored := mock.objects["k"]
	mock.mu.Unlock()

	if calls != 3 {
		t.Errorf("put calls = %d, want 3", calls)
	}
	// Retries must rewind and re-send the full body
	if !bytes.Equal(stored, data) {
		t.Errorf("stored %q, want %q", stored, data)
	}
}

func TestPutGivesUpAfterMaxRetries(t *testing.T) {
	mock := newMockS3()
	mock.putFails = 10
	st := newTestStore(mock)

	err := st.Put(context.Background(), "k", bytes.NewReader([]byte("x")), "image/png", 1)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}

func TestDisabledStore(t *testing.T) {
	st := NewStore(Config{})
	if st.Enabled() {
		t.Error("expected store without credentials to be disabled")
	}

	ctx := context.Background()
	if err := st.Put(ctx, "k", bytes.NewReader(nil), "image/png", 0); err == nil {
		t.Error("expected put on disabled store to fail")
	}
	if _, _, err := st.Get(ctx, "k"); err == nil {
		t.Error("expected get on disabled store to fail")
	}
	if err := st.Delete(ctx, "k"); err == nil {
		t.Error("expected delete on disabled store to fail")
	}
}

func TestUpdateConfig(t *testing.T) {
	st := NewStore(Config{})
	if st.Enabled() {
		t.Fatal("expected disabled initially")
	}

	st.UpdateConfig(Config{Bucket: "b", AccessKey: "k", SecretKey: "s", Region: "us-east-1"})
	if !st.Enabled() {
		t.Error("expected enabled after config update")
	}

	st.UpdateConfig(Config{})
	if st.Enabled() {
		t.Error("expected disabled after clearing config")
	}
}

func TestPhotoKey(t *testing.T) {
	got := PhotoKey(42, 7, "f3a9.png")
	want := "events/42/blocks/7/f3a9.png"
	if got != want {
		t.Errorf("key = %q, want %q", got, want)
	}
}
