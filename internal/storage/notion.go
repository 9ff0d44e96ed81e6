package storage

import (
	"context"
	"io"

	"github.com/cardsite/backend/pkg/notion"
)

// NotionStore は Notion の file upload API を ObjectStore として扱う。
type NotionStore struct {
	client notion.Client
}

// NewNotionStore は NotionStore を生成する。
func NewNotionStore(client notion.Client) *NotionStore {
	return &NotionStore{client: client}
}

var _ ObjectStore = (*NotionStore)(nil)

func (s *NotionStore) Declare(ctx context.Context, filename string, size int64) (string, error) {
	up, err := s.client.CreateFileUpload(ctx, filename, size)
	if err != nil {
		return "", err
	}
	return up.ID, nil
}

func (s *NotionStore) Transfer(ctx context.Context, handle, filename, contentType string, data io.Reader) error {
	return s.client.SendFileUpload(ctx, handle, filename, contentType, data)
}
