package calllog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"calllog/internal/broker"
	"calllog/internal/logger"
	"calllog/pkg/logging"
	"calllog/pkg/models"
)

// ErrUndecodableRequest marks a message that is not a QueryRequest. Such
// messages cannot be answered and are dead-lettered instead.
var ErrUndecodableRequest = errors.New("undecodable query request")

type ReplyPublisher interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

// QueryConsumer answers QueryRequests read from the broker. Every decodable
// request gets exactly one reply, resolved or rejected.
type QueryConsumer struct {
	service    *Service
	publisher  ReplyPublisher
	replyTopic string
	logger     logger.Logger
	now        func() time.Time
}

func NewQueryConsumer(service *Service, publisher ReplyPublisher, replyTopic string, log logger.Logger) *QueryConsumer {
	return &QueryConsumer{
		service:    service,
		publisher:  publisher,
		replyTopic: replyTopic,
		logger:     log,
		now:        time.Now,
	}
}

// Handle is a broker.HandlerFunc.
func (q *QueryConsumer) Handle(ctx context.Context, msg broker.Message) error {
	var req models.QueryRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return fmt.Errorf("%w: %w", ErrUndecodableRequest, err)
	}
	if req.ID == "" {
		return fmt.Errorf("%w: missing id", ErrUndecodableRequest)
	}

	if req.Metadata.TraceID != "" {
		ctx = logging.WithTraceID(ctx, req.Metadata.TraceID)
	}
	ctx = logging.WithRequestID(ctx, req.ID)

	resp := q.Resolve(ctx, req)

	topic := req.ReplyTopic
	if topic == "" {
		topic = q.replyTopic
	}
	if err := q.publisher.Publish(ctx, topic, req.ID, resp); err != nil {
		return fmt.Errorf("failed to publish reply for %s: %w", req.ID, err)
	}

	fields := []interface{}{
		"topic", topic,
		"status", resp.Status,
		"records", len(resp.Records),
	}
	if !req.Timestamp.IsZero() {
		fields = append(fields, "latency_ms", resp.ResolvedAt.Sub(req.Timestamp).Milliseconds())
	}
	q.logger.DebugwCtx(ctx, "Query reply published", fields...)
	return nil
}

// Resolve runs req and builds its reply. A nil limit is unbounded.
func (q *QueryConsumer) Resolve(ctx context.Context, req models.QueryRequest) models.QueryResponse {
	limit := -1
	if req.Limit != nil {
		limit = *req.Limit
	}

	resp := models.QueryResponse{
		RequestID: req.ID,
		Metadata:  models.Metadata{TraceID: req.Metadata.TraceID},
	}

	records, err := q.service.LoadWithFilter(ctx, limit, req.Filter)
	resp.ResolvedAt = q.now().UTC()
	if err != nil {
		appErr := ToAppError(err)
		resp.Status = models.QueryStatusRejected
		resp.Records = []map[string]string{}
		resp.Error = &models.ErrorPayload{
			Code:    appErr.Code,
			Message: err.Error(),
			Details: appErr.Details,
		}
		return resp
	}

	resp.Status = models.QueryStatusResolved
	resp.Records = ToMaps(records)
	return resp
}
