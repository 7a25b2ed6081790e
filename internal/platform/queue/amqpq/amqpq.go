// Package amqpq is the RabbitMQ queue driver
package amqpq

import (
	"context"
	"fmt"
	"sync"
	"time"

	perr "contextual/internal/platform/errors"
	"contextual/internal/platform/logger"
	"contextual/internal/platform/queue"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client publishes with confirms and consumes with manual ack on one durable queue
type Client struct {
	cfg  queue.Config
	conn *amqp.Connection
	log  *logger.Logger

	mu  sync.Mutex // guards pub; amqp channels are not safe for concurrent publish
	pub *amqp.Channel

	cmu      sync.Mutex
	consumes []*amqp.Channel
}

var dial = func(url string, cfg amqp.Config) (*amqp.Connection, error) { return amqp.DialConfig(url, cfg) } // seam

// Dial connects, declares the queue and enables publisher confirms
func Dial(ctx context.Context, cfg queue.Config) (*Client, error) {
	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName(cfg.AppName)

	conn, err := dialRetry(ctx, cfg.AMQP.URL, amqp.Config{Properties: props, Heartbeat: 10 * time.Second})
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "amqp dial")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "amqp channel")
	}
	if err := declare(ch, cfg); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = conn.Close()
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "amqp confirm mode")
	}
	c := &Client{cfg: cfg, conn: conn, pub: ch, log: logger.Named("amqpq")}
	if Unbounded(cfg) {
		c.log.Warn().Str("queue", cfg.Name).Str("type", cfg.AMQP.Type).
			Msg("queue has no delivery limit and no dead letter exchange, a failing message is redelivered forever")
	}
	return c, nil
}

// Unbounded reports a declaration where nothing stops a message from being requeued forever
func Unbounded(cfg queue.Config) bool {
	limited := cfg.AMQP.Type == "quorum" && cfg.AMQP.DeliveryLimit > 0
	return !limited && cfg.AMQP.DLX == ""
}

// dialRetry backs off from 250ms to 4s while ctx allows; brokers often start after us in compose
func dialRetry(ctx context.Context, url string, cfg amqp.Config) (*amqp.Connection, error) {
	wait := 250 * time.Millisecond
	for attempt := 1; ; attempt++ {
		conn, err := dial(url, cfg)
		if err == nil {
			return conn, nil
		}
		logger.Named("amqpq").Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("amqp dial failed")
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-time.After(wait):
		}
		if wait < 4*time.Second {
			wait *= 2
		}
	}
}

// QueueArgs are the x-arguments the queue is declared with
func QueueArgs(cfg queue.Config) amqp.Table {
	args := amqp.Table{}
	if cfg.AMQP.Type == "quorum" {
		args["x-queue-type"] = "quorum"
		if cfg.AMQP.DeliveryLimit > 0 {
			args["x-delivery-limit"] = int64(cfg.AMQP.DeliveryLimit)
		}
	}
	if cfg.AMQP.DLX != "" {
		args["x-dead-letter-exchange"] = cfg.AMQP.DLX
	}
	return args
}

func declare(ch *amqp.Channel, cfg queue.Config) error {
	if _, err := ch.QueueDeclare(cfg.Name, true, false, false, false, QueueArgs(cfg)); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "declare queue %s", cfg.Name)
	}
	return nil
}

// Publish sends a persistent message and waits for the broker confirm
func (c *Client) Publish(ctx context.Context, m queue.Message) error {
	c.mu.Lock()
	dc, err := c.pub.PublishWithDeferredConfirmWithContext(ctx, "", c.cfg.Name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    m.ID,
		Type:         m.Type,
		Timestamp:    m.PublishedAt,
		AppId:        c.cfg.AppName,
		Body:         m.Body,
	})
	c.mu.Unlock()
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "amqp publish")
	}
	acked, err := dc.WaitContext(ctx)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "amqp confirm")
	}
	if !acked {
		return perr.Unavailablef("amqp publish %s nacked by broker", m.ID)
	}
	return nil
}

// Deliveries opens a consumer channel with Qos(prefetch)
// On ctx cancel the consumer is cancelled and anything still buffered is requeued
func (c *Client) Deliveries(ctx context.Context) (<-chan queue.Delivery, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "amqp channel")
	}
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "amqp qos")
	}
	if err := declare(ch, c.cfg); err != nil {
		_ = ch.Close()
		return nil, err
	}
	tag := fmt.Sprintf("%s-%d", c.cfg.AppName, time.Now().UnixNano())
	msgs, err := ch.Consume(c.cfg.Name, tag, false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "amqp consume")
	}
	c.cmu.Lock()
	c.consumes = append(c.consumes, ch)
	c.cmu.Unlock()

	out := make(chan queue.Delivery)
	go func() {
		defer close(out)
		cancelled := false
		for {
			select {
			case <-ctx.Done():
				if !cancelled {
					cancelled = true
					if err := ch.Cancel(tag, false); err != nil {
						c.log.Warn().Err(err).Msg("amqp consumer cancel")
						return
					}
				}
				// drain whatever the broker already pushed
				for d := range msgs {
					c.requeue(d)
				}
				return
			case d, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- delivery{d: d}:
				case <-ctx.Done():
					c.requeue(d)
				}
			}
		}
	}()
	return out, nil
}

// requeue hands an unstarted delivery back to the broker
func (c *Client) requeue(d acker) {
	if err := d.Nack(false, true); err != nil {
		c.log.Warn().Err(err).Str("queue", c.cfg.Name).Msg("amqp requeue on shutdown failed")
	}
}

type acker interface {
	Nack(multiple, requeue bool) error
}

// Ping reports whether the connection is open
func (c *Client) Ping(context.Context) error {
	if c == nil || c.conn == nil || c.conn.IsClosed() {
		return perr.Unavailablef("amqp connection closed")
	}
	return nil
}

// Close closes consumer channels, the publish channel and the connection
func (c *Client) Close() error {
	c.cmu.Lock()
	for _, ch := range c.consumes {
		_ = ch.Close()
	}
	c.consumes = nil
	c.cmu.Unlock()
	if c.pub != nil {
		_ = c.pub.Close()
	}
	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn.Close()
	}
	return nil
}

type delivery struct{ d amqp.Delivery }

func (d delivery) Message() queue.Message {
	return queue.Message{
		ID:          d.d.MessageId,
		Type:        d.d.Type,
		Body:        d.d.Body,
		Attempt:     Attempt(d.d.Headers, d.d.Redelivered),
		PublishedAt: d.d.Timestamp,
	}
}

func (d delivery) Ack(context.Context) error { return d.d.Ack(false) }

func (d delivery) Nack(_ context.Context, requeue bool) error { return d.d.Nack(false, requeue) }

// Attempt derives the 1-based attempt from the quorum delivery count or the redelivered flag
func Attempt(h amqp.Table, redelivered bool) int {
	switch n := h["x-delivery-count"].(type) {
	case int64:
		return int(n) + 1
	case int32:
		return int(n) + 1
	case int:
		return n + 1
	}
	if redelivered {
		return 2
	}
	return 1
}

var _ queue.Queue = (*Client)(nil)
