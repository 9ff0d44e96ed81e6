package repository

import (
	"context"

	"github.com/cardsite/backend/pkg/notion"
)

// NotionContactRepository writes contact records as pages of a Notion database.
type NotionContactRepository struct {
	client     notion.Client
	databaseID string
}

// NewNotionContactRepository creates a NotionContactRepository for databaseID.
func NewNotionContactRepository(client notion.Client, databaseID string) *NotionContactRepository {
	return &NotionContactRepository{client: client, databaseID: databaseID}
}

// Ensure NotionContactRepository implements ContactRepository at compile time.
var _ ContactRepository = (*NotionContactRepository)(nil)

// Create makes exactly one pages.create call.
func (r *NotionContactRepository) Create(ctx context.Context, props notion.Properties) (string, error) {
	page, err := r.client.CreatePage(ctx, r.databaseID, props)
	if err != nil {
		return "", err
	}
	return page.ID, nil
}
