package s3

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	key, err := s.PutMedia(ctx, 7, "image/jpeg", []byte("jpeg"))
	if err != nil {
		t.Fatalf("PutMedia() error = %v", err)
	}
	if !strings.HasPrefix(key, "media/7/") {
		t.Errorf("key = %q", key)
	}

	data, err := s.GetMedia(ctx, key)
	if err != nil || !bytes.Equal(data, []byte("jpeg")) {
		t.Fatalf("GetMedia() = %q, %v", data, err)
	}

	if err := s.DeleteMedia(ctx, key); err != nil {
		t.Fatalf("DeleteMedia() error = %v", err)
	}
	if _, err := s.GetMedia(ctx, key); err == nil {
		t.Error("GetMedia() after delete should fail")
	}
}
