// Package messaging serves match requests that arrive over Kafka and
// publishes the rankings, or the failure, to reply topics.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/peptok/CoachMarketBack/internal/models"
	"github.com/peptok/CoachMarketBack/internal/services"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const unknownRequestID = "unknown"

type Config struct {
	Brokers       []string
	GroupID       string
	RequestTopic  string
	ResponseTopic string
	ErrorTopic    string
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type matchGenerator interface {
	GenerateMatches(ctx context.Context, input services.GenerateMatchesInput) (*models.MatchResponse, error)
}

// MatchRequestMessage is the payload on the request topic.
type MatchRequestMessage struct {
	RequestID  string               `json:"request_id"`
	CompanyID  string               `json:"company_id"`
	Title      string               `json:"title"`
	Expertise  []string             `json:"expertise"`
	Experience string               `json:"experience"`
	Weights    *models.ScoreWeights `json:"weights,omitempty"`
}

type MatchResponseMessage struct {
	models.MatchResponse
	Timestamp string `json:"timestamp"`
}

type MatchErrorMessage struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type MatchConsumer struct {
	reader        messageReader
	writer        messageWriter
	generator     matchGenerator
	responseTopic string
	errorTopic    string
	logger        *zap.Logger
	now           func() time.Time
}

// NewKafkaMatchConsumer connects a consumer group reader on the request
// topic and a writer that routes each reply by its own topic.
func NewKafkaMatchConsumer(cfg Config, generator matchGenerator, logger *zap.Logger) *MatchConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           cfg.Brokers,
		GroupID:           cfg.GroupID,
		Topic:             cfg.RequestTopic,
		StartOffset:       kafka.LastOffset,
		SessionTimeout:    30 * time.Second,
		HeartbeatInterval: 10 * time.Second,
	})
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            3,
		AllowAutoTopicCreation: true,
	}
	return NewMatchConsumer(reader, writer, generator, cfg.ResponseTopic, cfg.ErrorTopic, logger)
}

func NewMatchConsumer(
	reader messageReader,
	writer messageWriter,
	generator matchGenerator,
	responseTopic string,
	errorTopic string,
	logger *zap.Logger,
) *MatchConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchConsumer{
		reader:        reader,
		writer:        writer,
		generator:     generator,
		responseTopic: responseTopic,
		errorTopic:    errorTopic,
		logger:        logger,
		now:           time.Now,
	}
}

// Run consumes until ctx is cancelled. A message is committed once a reply
// for it has been published.
func (c *MatchConsumer) Run(ctx context.Context) error {
	defer func() {
		if err := c.reader.Close(); err != nil {
			c.logger.Warn("close kafka reader", zap.Error(err))
		}
		if err := c.writer.Close(); err != nil {
			c.logger.Warn("close kafka writer", zap.Error(err))
		}
	}()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("fetch match request: %w", err)
		}

		if err := c.Handle(ctx, msg); err != nil {
			c.logger.Error("publish match reply failed",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit match request: %w", err)
		}
	}
}

// Handle ranks one request and publishes the response, or an error reply
// when the request cannot be decoded or matched. Only publish failures are
// returned.
func (c *MatchConsumer) Handle(ctx context.Context, msg kafka.Message) error {
	var request MatchRequestMessage
	if err := json.Unmarshal(msg.Value, &request); err != nil {
		c.logger.Warn("decode match request", zap.Error(err))
		return c.publishError(ctx, unknownRequestID, err)
	}

	requestID := strings.TrimSpace(request.RequestID)
	if requestID == "" {
		requestID = unknownRequestID
	}
	c.logger.Info("processing match request", zap.String("request_id", requestID))

	response, err := c.generator.GenerateMatches(ctx, services.GenerateMatchesInput{
		RequestID:  request.RequestID,
		CompanyID:  request.CompanyID,
		Title:      request.Title,
		Expertise:  request.Expertise,
		Experience: request.Experience,
		Weights:    request.Weights,
	})
	if err != nil {
		c.logger.Warn("match request failed", zap.String("request_id", requestID), zap.Error(err))
		return c.publishError(ctx, requestID, err)
	}

	payload, err := json.Marshal(MatchResponseMessage{
		MatchResponse: *response,
		Timestamp:     c.timestamp(),
	})
	if err != nil {
		return err
	}
	return c.writer.WriteMessages(ctx, kafka.Message{
		Topic: c.responseTopic,
		Key:   []byte(response.RequestID),
		Value: payload,
	})
}

func (c *MatchConsumer) publishError(ctx context.Context, requestID string, cause error) error {
	payload, err := json.Marshal(MatchErrorMessage{
		RequestID: requestID,
		Error:     "Matching failed",
		Message:   cause.Error(),
		Timestamp: c.timestamp(),
	})
	if err != nil {
		return err
	}
	return c.writer.WriteMessages(ctx, kafka.Message{
		Topic: c.errorTopic,
		Key:   []byte(requestID),
		Value: payload,
	})
}

func (c *MatchConsumer) timestamp() string {
	return c.now().UTC().Format(time.RFC3339)
}
