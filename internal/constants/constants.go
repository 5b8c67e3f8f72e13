package constants

import "time"

const (
	ServiceName = "calllog-service"
)

const (
	KafkaBatchTimeout  = 10 * time.Millisecond
	KafkaWriteTimeout  = 10 * time.Second
	KafkaFetchBackoff  = time.Second
	KafkaReaderMinSize = 1
	KafkaReaderMaxSize = 10e6
)

const (
	DLQReasonHeader      = "x-dlq-reason"
	DLQSourceTopicHeader = "x-dlq-source-topic"
	DLQTimestampHeader   = "x-dlq-timestamp"
)

const (
	DefaultInputTopic  = "calllog.queries"
	DefaultOutputTopic = "calllog.replies"
)

const (
	ShutdownTimeout = 5 * time.Second
)
