package model

import "time"

// Reserved context keys of an analytics event.
const (
	EventKeyAction    = "action"
	EventKeyTimestamp = "timestamp"
	EventKeyUserAgent = "userAgent"
	EventKeyReferer   = "referer"
	EventKeyIP        = "ip"
)

// RequestContext is the request metadata captured for an analytics event.
type RequestContext struct {
	UserAgent string
	Referer   string
	ClientIP  string
}

// AnalyticsEvent is a single beacon. Fields holds the context keys above plus
// whatever metadata the caller sent, merged last.
type AnalyticsEvent struct {
	Action    string
	Timestamp time.Time
	Fields    map[string]any
}

// NewAnalyticsEvent builds the event record. Caller metadata is merged after
// the context keys and may shadow them.
func NewAnalyticsEvent(action string, at time.Time, rc RequestContext, metadata map[string]any) *AnalyticsEvent {
	fields := map[string]any{
		EventKeyAction:    action,
		EventKeyTimestamp: at.UTC().Format(time.RFC3339Nano),
		EventKeyUserAgent: nullable(rc.UserAgent),
		EventKeyReferer:   nullable(rc.Referer),
		EventKeyIP:        nullable(rc.ClientIP),
	}
	for k, v := range metadata {
		fields[k] = v
	}
	return &AnalyticsEvent{Action: action, Timestamp: at.UTC(), Fields: fields}
}

// String returns the text stored under key, or "" when it is missing or not a
// string.
func (e *AnalyticsEvent) String(key string) string {
	s, _ := e.Fields[key].(string)
	return s
}

// Metadata returns the fields that are not reserved context keys.
func (e *AnalyticsEvent) Metadata() map[string]any {
	out := make(map[string]any)
	for k, v := range e.Fields {
		switch k {
		case EventKeyAction, EventKeyTimestamp, EventKeyUserAgent, EventKeyReferer, EventKeyIP:
			continue
		}
		out[k] = v
	}
	return out
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
