package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"gastos/internal/log"
)

// Circuit breaker states.
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures        = 5
	openTimeout        = 30 * time.Second
	maxBackoff         = 30 * time.Second
	maxPublishAttempts = 3
	publishTimeout     = 5 * time.Second
	prefetchCount      = 10
	consumerTag        = "gastos-worker"
)

func logger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx).WithComponent(log.ComponentAMQP)
}

var errChannelClosed = errors.New("delivery channel closed")

// Client publishes and consumes events on a durable direct exchange. It
// reconnects on connection loss and stops publishing while the broker keeps
// failing.
type Client struct {
	url          string
	exchangeName string
	queueName    string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	failureCount int64
	state        int32
	breakerMu    sync.Mutex
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
	}
	if _, err := client.ensureChannel(); err != nil {
		return nil, err
	}
	return client, nil
}

// ensureChannel returns an open channel, dialing again when the connection
// or channel has been closed.
func (c *Client) ensureChannel() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosed() && c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}
	c.closeLocked()

	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	c.conn, c.channel = conn, channel

	if err := c.setup(); err != nil {
		c.closeLocked()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return channel, nil
}

// setup declares a durable direct exchange and a durable queue bound to it
// under its own name.
func (c *Client) setup() error {
	const durable, autoDelete, internal, exclusive, noWait = true, false, false, false, false

	if err := c.channel.ExchangeDeclare(c.exchangeName, amqp091.ExchangeDirect, durable, autoDelete, internal, noWait, nil); err != nil {
		return fmt.Errorf("declare exchange %q: %w", c.exchangeName, err)
	}
	if _, err := c.channel.QueueDeclare(c.queueName, durable, autoDelete, exclusive, noWait, nil); err != nil {
		return fmt.Errorf("declare queue %q: %w", c.queueName, err)
	}
	if err := c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, noWait, nil); err != nil {
		return fmt.Errorf("bind queue %q: %w", c.queueName, err)
	}
	return nil
}

// Publish sends ev as a persistent JSON message. Connection failures are
// retried with backoff; repeated failures open the circuit breaker and later
// calls fail fast until it half-opens.
func (c *Client) Publish(ctx context.Context, ev *Event) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("circuit breaker is open: skipping %s event", ev.Type)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxPublishAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(exponentialBackoff(attempt - 1)):
			}
		}

		lastErr = c.publishOnce(ctx, body)
		if lastErr == nil {
			c.recordSuccess()
			logger(ctx).InfoContext(ctx, "Published event",
				"type", ev.Type,
				log.FieldBatchID, ev.BatchID,
				log.FieldUserID, ev.UserID,
				"count", len(ev.TransactionIDs),
				"exchange", c.exchangeName)
			return nil
		}

		c.recordFailure()
		if !isConnectionError(lastErr) || c.isCircuitOpen() {
			break
		}
		logger(ctx).WarnContext(ctx, "Publish failed, reconnecting", "attempt", attempt+1, log.FieldError, lastErr)
		c.resetConnection()
	}
	return fmt.Errorf("publish %s event: %w", ev.Type, lastErr)
}

func (c *Client) publishOnce(ctx context.Context, body []byte) error {
	ch, err := c.ensureChannel()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	const mandatory, immediate = false, false
	return ch.PublishWithContext(ctx, c.exchangeName, c.queueName, mandatory, immediate, msg)
}

// Consume delivers events to handler until ctx is done, reconnecting with
// backoff whenever the broker drops the connection. Malformed messages are
// dropped; handler failures are requeued once and then dropped.
func (c *Client) Consume(ctx context.Context, handler func(context.Context, *Event) error) error {
	for attempt := 0; ; attempt++ {
		err := c.consumeOnce(ctx, handler, func() { attempt = 0 })
		if ctx.Err() != nil {
			logger(ctx).InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		}

		wait := exponentialBackoff(attempt)
		logger(ctx).WarnContext(ctx, "Consumer interrupted, reconnecting", log.FieldError, err, "retry_in", wait)
		c.resetConnection()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) consumeOnce(ctx context.Context, handler func(context.Context, *Event) error, connected func()) error {
	ch, err := c.ensureChannel()
	if err != nil {
		return err
	}
	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	// Acks are manual: handleDelivery decides per message.
	const autoAck, exclusive, noLocal, noWait = false, false, false, false
	msgs, err := ch.Consume(c.queueName, consumerTag, autoAck, exclusive, noLocal, noWait, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	connected()
	logger(ctx).InfoContext(ctx, "Started consuming events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errChannelClosed
			}
			c.handleDelivery(ctx, delivery, handler)
		}
	}
}

func (c *Client) handleDelivery(ctx context.Context, d amqp091.Delivery, handler func(context.Context, *Event) error) {
	ev, err := EventFromJSON(d.Body)
	if err != nil {
		logger(ctx).ErrorContext(ctx, "Failed to decode event", log.FieldError, err)
		settle(ctx, "nack", d.Nack(false, false))
		return
	}

	if err := handler(ctx, ev); err != nil {
		requeue := !d.Redelivered
		logger(ctx).ErrorContext(ctx, "Failed to handle event",
			log.FieldError, err,
			"type", ev.Type,
			log.FieldBatchID, ev.BatchID,
			"requeue", requeue)
		settle(ctx, "nack", d.Nack(false, requeue))
		return
	}

	if err := d.Ack(false); err != nil {
		settle(ctx, "ack", err)
		return
	}
	logger(ctx).InfoContext(ctx, "Processed event", "type", ev.Type, log.FieldBatchID, ev.BatchID, log.FieldUserID, ev.UserID)
}

// settle logs a failed acknowledgement. The broker redelivers the message
// once the channel closes.
func settle(ctx context.Context, op string, err error) {
	if err != nil {
		logger(ctx).WarnContext(ctx, "Failed to settle delivery", "op", op, log.FieldError, err)
	}
}

func (c *Client) resetConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	return err
}

// isCircuitOpen reports whether publishing should be skipped. An open
// circuit moves to half-open once openTimeout has passed since the last
// failure.
func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.breakerMu.Lock()
	last := c.lastFailure
	c.breakerMu.Unlock()

	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

// recordFailure opens the circuit after maxFailures consecutive failures, or
// immediately when the half-open trial fails.
func (c *Client) recordFailure() {
	n := atomic.AddInt64(&c.failureCount, 1)
	c.breakerMu.Lock()
	c.lastFailure = time.Now()
	c.breakerMu.Unlock()

	if n >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

// exponentialBackoff returns 1s doubled per attempt, capped at maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{
		"connection refused",
		"connection closed",
		"connection reset",
		"unexpected EOF",
		"broken pipe",
		"use of closed network connection",
		"dial AMQP",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
