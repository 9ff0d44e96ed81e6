package repository

import (
	"context"

	"github.com/cardsite/backend/internal/model"
	"github.com/cardsite/backend/pkg/notion"
)

// DB は DB 接続の生存確認を行うインターフェース
type DB interface {
	Ping(ctx context.Context) error
}

// ContactRepository persists one contact record built as a typed property
// map. It returns the identifier the external store assigned.
type ContactRepository interface {
	Create(ctx context.Context, props notion.Properties) (string, error)
}

// AnalyticsRepository is one destination for analytics events.
type AnalyticsRepository interface {
	// Name identifies the sink in logs and metrics.
	Name() string
	Insert(ctx context.Context, e *model.AnalyticsEvent) error
}
