package datasource

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/hightman/xunsearch/lib/xserror"
	"github.com/segmentio/kafka-go"
)

// DefaultGroup is the consumer group used when none is configured
const DefaultGroup = "xs-import"

// Kafka consumes json objects from a topic. The offset of a message is
// committed when the record was acknowledged. The source never ends on its
// own, cancel the context to stop an import.
type Kafka struct {
	reader  *kafka.Reader
	pending *kafka.Message
	invalid int
}

// OpenKafka creates a consumer for kafka://broker1,broker2/topic
func OpenKafka(rawURL, group string) (*Kafka, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &xserror.ConfigError{Msg: "Wrong format of kafka parameter", Err: err}
	}
	topic := strings.Trim(u.Path, "/")
	if u.Host == "" || topic == "" {
		return nil, xserror.NewConfigError("Kafka source requires brokers and a topic: `%s'", rawURL)
	}
	if g := u.Query().Get("group"); g != "" {
		group = g
	}
	if group == "" {
		group = DefaultGroup
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(u.Host, ","),
		Topic:    topic,
		GroupID:  group,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	Logger.Infof("consuming topic %s as group %s", topic, group)
	return &Kafka{reader: r}, nil
}

func (s *Kafka) Next(ctx context.Context) (Record, error) {
	for {
		msg, err := s.reader.FetchMessage(ctx)
		if err != nil {
			return nil, err
		}

		var item map[string]any
		if err := json.Unmarshal(msg.Value, &item); err != nil || len(item) == 0 {
			Logger.Warningf("invalid message at partition %d offset %d", msg.Partition, msg.Offset)
			s.invalid++
			if err := s.reader.CommitMessages(ctx, msg); err != nil {
				return nil, err
			}
			continue
		}

		rec := make(Record, len(item))
		for k, v := range item {
			rec[k] = stringify(v)
		}
		s.pending = &msg
		return rec, nil
	}
}

// Ack commits the offset of the last record returned by Next
func (s *Kafka) Ack(ctx context.Context) error {
	if s.pending == nil {
		return nil
	}
	msg := *s.pending
	s.pending = nil
	return s.reader.CommitMessages(ctx, msg)
}

func (s *Kafka) Charset() string { return "UTF-8" }
func (s *Kafka) Invalid() int    { return s.invalid }
func (s *Kafka) Close() error    { return s.reader.Close() }
