package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type (
	Writer        = kafka.Writer
	Reader        = kafka.Reader
	Message       = kafka.Message
	MessageHeader = kafka.Header
)

// MessageWriter é o subconjunto de *kafka.Writer usado pelos publishers
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// MessageReader é o subconjunto de *kafka.Reader usado pelos consumidores
// com commit manual
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

const (
	HeaderMessageID       = "message-id"
	HeaderContractVersion = "contract-version"
	HeaderDLQReason       = "dlq-reason"
)

// NewWriter cria um writer síncrono com ack de todas as réplicas:
// WriteMessages só retorna depois que o broker confirmou a gravação.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
	}
}

// NewReader cria um reader de consumer group sem auto-commit:
// o offset só avança via CommitMessages, depois do processamento.
func NewReader(brokers []string, topic string, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // commit síncrono
		StartOffset:    kafka.FirstOffset,
	})
}

// helper pra enviar mensagem JSON com id e versão de contrato nos headers
func WriteJSON(ctx context.Context, w MessageWriter, key string, payload []byte, version string) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: HeaderMessageID, Value: []byte(uuid.NewString())},
			{Key: HeaderContractVersion, Value: []byte(version)},
		},
	}

	return w.WriteMessages(ctx, msg)
}

// Header retorna o valor de um header da mensagem ("" se ausente)
func Header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// Ping abre e fecha uma conexão com o primeiro broker que responder
func Ping(ctx context.Context, brokers []string) error {
	var err error
	for _, b := range brokers {
		var conn *kafka.Conn
		conn, err = kafka.DialContext(ctx, "tcp", b)
		if err == nil {
			return conn.Close()
		}
	}
	if err == nil {
		err = errors.New("no kafka brokers configured")
	}
	return err
}
