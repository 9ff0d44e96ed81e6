package repository

import (
	"context"
	"time"

	"github.com/cardsite/backend/internal/model"
	"github.com/cardsite/backend/pkg/notion"
)

// Analytics database column names.
const (
	analyticsPropAction    = "Action"
	analyticsPropTimestamp = "Timestamp"
	analyticsPropUserAgent = "User Agent"
	analyticsPropReferer   = "Referer"
	analyticsPropIP        = "IP Address"
)

type notionAnalyticsRepository struct {
	client     notion.Client
	databaseID string
}

// NewNotionAnalyticsRepository returns an AnalyticsRepository writing one page
// per event into databaseID.
func NewNotionAnalyticsRepository(client notion.Client, databaseID string) AnalyticsRepository {
	return &notionAnalyticsRepository{client: client, databaseID: databaseID}
}

func (r *notionAnalyticsRepository) Name() string { return "notion" }

func (r *notionAnalyticsRepository) Insert(ctx context.Context, e *model.AnalyticsEvent) error {
	_, err := r.client.CreatePage(ctx, r.databaseID, AnalyticsProperties(e))
	return err
}

// AnalyticsProperties maps an event onto the analytics database columns.
// Context values come from the merged field set, so caller metadata that
// shadows a context key is what gets stored.
func AnalyticsProperties(e *model.AnalyticsEvent) notion.Properties {
	ts := e.Timestamp
	if s := e.String(model.EventKeyTimestamp); s != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
			ts = parsed
		}
	}

	referer := notion.NullURL()
	if s := e.String(model.EventKeyReferer); s != "" {
		referer = notion.URL(s)
	}

	return notion.NewPropertyBuilder().
		Set(analyticsPropAction, notion.Select(e.Action)).
		Set(analyticsPropTimestamp, notion.Date(ts)).
		Set(analyticsPropUserAgent, notion.RichText(orUnknown(e.String(model.EventKeyUserAgent)))).
		Set(analyticsPropReferer, referer).
		Set(analyticsPropIP, notion.RichText(orUnknown(e.String(model.EventKeyIP)))).
		Build()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
