// Package kafka builds the Kafka writer used to publish regulatory update events.
package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"time"

	"github.com/qeme/sentinel-lite/internal/regulatory"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.uber.org/zap"
)

const dialTimeout = 10 * time.Second

// Dialer returns a dialer for cfg. SASL/PLAIN over TLS is used when an API key
// and secret are configured, a plain connection otherwise.
func Dialer(cfg regulatory.KafkaConfig) *kafka.Dialer {
	if cfg.APIKey != "" && cfg.APISecret != "" {
		return &kafka.Dialer{
			Timeout:   dialTimeout,
			DualStack: true,
			SASLMechanism: plain.Mechanism{
				Username: cfg.APIKey,
				Password: cfg.APISecret,
			},
			TLS: &tls.Config{MinVersion: tls.VersionTLS12},
		}
	}
	return &kafka.Dialer{
		Timeout:   dialTimeout,
		DualStack: true,
	}
}

// NewWriter returns a writer for cfg.Topic using the same security settings as Dialer.
func NewWriter(cfg regulatory.KafkaConfig) *kafka.Writer {
	transport := &kafka.Transport{DialTimeout: dialTimeout}
	if cfg.APIKey != "" && cfg.APISecret != "" {
		transport.SASL = plain.Mechanism{Username: cfg.APIKey, Password: cfg.APISecret}
		transport.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	topic := cfg.Topic
	if topic == "" {
		topic = regulatory.DefaultKafkaTopic
	}

	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           100 * time.Millisecond,
		Transport:              transport,
	}
}

// CheckConnection dials the first broker, retrying up to three times.
func CheckConnection(ctx context.Context, cfg regulatory.KafkaConfig, logger *zap.Logger) error {
	if !cfg.Enabled() {
		return errors.New("no kafka brokers configured")
	}

	dialer := Dialer(cfg)
	var err error
	for i := 1; i <= 3; i++ {
		logger.Sugar().Debugf("Kafka connection attempt %d/3...", i)
		var conn *kafka.Conn
		conn, err = dialer.DialContext(ctx, "tcp", cfg.Brokers[0])
		if err == nil {
			return conn.Close()
		}
		if i < 3 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}
	return err
}
