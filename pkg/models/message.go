package models

import "time"

const (
	QueryStatusResolved = "resolved"
	QueryStatusRejected = "rejected"
)

// QueryRequest asks for a filtered slice of the call history. Limit follows the
// loadWithFilter contract: nil or negative means unbounded.
type QueryRequest struct {
	ID         string      `json:"id"`
	ReplyTopic string      `json:"reply_topic,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Limit      *int        `json:"limit,omitempty"`
	Filter     *FilterSpec `json:"filter,omitempty"`
	Metadata   Metadata    `json:"metadata"`
}

// QueryResponse settles a QueryRequest: either resolved with records or
// rejected with an error.
type QueryResponse struct {
	RequestID  string              `json:"request_id"`
	Status     string              `json:"status"`
	Records    []map[string]string `json:"records"`
	Error      *ErrorPayload       `json:"error,omitempty"`
	ResolvedAt time.Time           `json:"resolved_at"`
	Metadata   Metadata            `json:"metadata"`
}

type ErrorPayload struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type Metadata struct {
	TraceID string `json:"trace_id,omitempty"`
}
