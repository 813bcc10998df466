package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// AMQPPublisher publishes engine events to a topic exchange; the routing key
// is the event type.
type AMQPPublisher struct {
	url      string
	exchange string
	logger   *slog.Logger

	mu         sync.Mutex
	conn       *amqp.Connection
	channel    *amqp.Channel
	connClosed chan *amqp.Error
	chanClosed chan *amqp.Error
}

func NewAMQPPublisher(url, exchange string, logger *slog.Logger) (*AMQPPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &AMQPPublisher{url: url, exchange: exchange, logger: logger}
	if err := p.connect(); err != nil {
		return nil, err
	}
	logger.Info("AMQP publisher connected", slog.String("exchange", exchange))
	return p, nil
}

// connect и openChannel вызываются под p.mu (или до того, как publisher стал доступен).
func (p *AMQPPublisher) connect() error {
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 60 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		return fmt.Errorf("failed to connect to AMQP: %w", err)
	}
	if err := p.openChannel(conn); err != nil {
		conn.Close()
		return err
	}
	p.conn = conn
	p.connClosed = conn.NotifyClose(make(chan *amqp.Error, 1))
	return nil
}

func (p *AMQPPublisher) openChannel(conn *amqp.Connection) error {
	channel, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		p.exchange, // name
		"topic",    // kind
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	); err != nil {
		channel.Close()
		return fmt.Errorf("failed to declare exchange %s: %w", p.exchange, err)
	}

	p.channel = channel
	p.chanClosed = channel.NotifyClose(make(chan *amqp.Error, 1))
	return nil
}

// ensureConnected восстанавливает соединение или только канал, если брокер
// закрыл канал (channel exception), а соединение живо.
func (p *AMQPPublisher) ensureConnected() error {
	select {
	case amqpErr := <-p.connClosed:
		p.logger.Warn("AMQP connection lost, reconnecting", slog.Any("error", amqpErr))
		if err := p.connect(); err != nil {
			return err
		}
		p.logger.Info("AMQP publisher reconnected", slog.String("exchange", p.exchange))
		return nil
	default:
	}

	select {
	case amqpErr := <-p.chanClosed:
		p.logger.Warn("AMQP channel closed, reopening", slog.Any("error", amqpErr))
		if p.conn.IsClosed() {
			return p.connect()
		}
		return p.openChannel(p.conn)
	default:
	}
	return nil
}

func (p *AMQPPublisher) Notify(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.Type, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureConnected(); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}
	err = p.channel.Publish(
		p.exchange,
		string(event.Type),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.At,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.Close(); err != nil {
		p.logger.Warn("failed to close AMQP channel", slog.Any("error", err))
	}
	return p.conn.Close()
}
