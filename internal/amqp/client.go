package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"
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
	baseBackoff        = 1 * time.Second
	maxBackoff         = 30 * time.Second
	maxPublishAttempts = 3
	publishTimeout     = 5 * time.Second
)

var (
	ErrCircuitOpen = errors.New("circuit breaker is open")
	ErrEmptyID     = errors.New("empty transaction id")
)

// Handler processes decoded messages. Returning an error requeues the
// delivery.
type Handler interface {
	HandleSync(ctx context.Context, msg *TransactionSyncMessage) error
	HandleDelete(ctx context.Context, msg *TransactionDeleteMessage) error
}

// Client publishes and consumes transaction sync messages on a durable
// direct exchange. Publishing goes through a circuit breaker: after
// maxFailures consecutive failures publishes fail fast for openTimeout, then
// one trial publish is allowed.
type Client struct {
	url          string
	exchangeName string
	queueName    string

	mu          sync.Mutex
	conn        *amqp091.Connection
	channel     *amqp091.Channel
	lastFailure time.Time

	state        int32
	failureCount int64
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	c := &Client{url: url, exchangeName: exchangeName, queueName: queueName}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.connectLocked(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connectLocked() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := setup(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}
	c.conn = conn
	c.channel = channel
	return nil
}

func setup(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// Routing key equals the queue name on the direct exchange.
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// ensureChannel returns an open channel, reconnecting if the previous one
// was closed.
func (c *Client) ensureChannel() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}
	c.closeLocked()
	if err := c.connectLocked(); err != nil {
		return nil, err
	}
	return c.channel, nil
}

// PublishTransactionSync publishes a sync message for a saved transaction.
func (c *Client) PublishTransactionSync(ctx context.Context, id string, version int64) error {
	if id == "" {
		return ErrEmptyID
	}
	body, err := NewTransactionSyncMessage(id, version).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, TypeTransactionSync, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published transaction sync message",
		"id", id,
		"version", version,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// PublishTransactionDelete publishes a delete message for a removed transaction.
func (c *Client) PublishTransactionDelete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	body, err := NewTransactionDeleteMessage(id).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, TypeTransactionDelete, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published transaction delete message", "id", id, "queue", c.queueName)
	return nil
}

func (c *Client) publish(ctx context.Context, msgType string, body []byte) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("publish %s: %w", msgType, ErrCircuitOpen)
	}
	if err := ctx.Err(); err != nil {
		return err
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

		ch, err := c.ensureChannel()
		if err == nil {
			pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			err = ch.PublishWithContext(pubCtx, c.exchangeName, c.queueName, false, false, amqp091.Publishing{
				ContentType:  "application/json",
				Type:         msgType,
				DeliveryMode: amqp091.Persistent,
				Timestamp:    time.Now(),
				Body:         body,
			})
			cancel()
		}
		if err == nil {
			c.recordSuccess()
			return nil
		}

		lastErr = err
		c.recordFailure()
		slog.WarnContext(ctx, "Publish attempt failed",
			"type", msgType,
			"attempt", attempt+1,
			"error", err)
		if !isConnectionError(err) || c.isCircuitOpen() {
			break
		}
		c.mu.Lock()
		c.closeLocked()
		c.mu.Unlock()
	}
	return fmt.Errorf("publish %s: %w", msgType, lastErr)
}

// isCircuitOpen reports whether publishes should fail fast. An open circuit
// moves to half-open once openTimeout has passed since the last failure.
func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()
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

func (c *Client) recordFailure() {
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()

	failures := atomic.AddInt64(&c.failureCount, 1)
	if failures >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		if atomic.SwapInt32(&c.state, StateOpen) != StateOpen {
			slog.Warn("AMQP circuit breaker opened", "failures", failures)
		}
	}
}

// exponentialBackoff returns the wait before retry number attempt (0-based):
// 1s doubling, capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	d := baseBackoff << attempt
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
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "channel/connection is not open"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// Consume delivers messages to h until ctx is cancelled or the channel closes.
// Undecodable messages are dropped; handler errors requeue the delivery.
func (c *Client) Consume(ctx context.Context, h Handler) error {
	ch, err := c.ensureChannel()
	if err != nil {
		return err
	}
	msgs, err := ch.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming transaction sync messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			switch err := dispatch(ctx, h, delivery.Type, delivery.Body); {
			case err == nil:
				_ = delivery.Ack(false)
			case errors.Is(err, errUndecodable):
				slog.ErrorContext(ctx, "Dropping undecodable message", "type", delivery.Type, "error", err)
				_ = delivery.Nack(false, false)
			default:
				slog.ErrorContext(ctx, "Failed to handle message", "type", delivery.Type, "error", err)
				_ = delivery.Nack(false, true)
			}
		}
	}
}

var errUndecodable = errors.New("undecodable message")

// dispatch decodes body according to msgType and calls the matching handler
// method. Messages without a type are treated as sync messages.
func dispatch(ctx context.Context, h Handler, msgType string, body []byte) error {
	switch msgType {
	case TypeTransactionSync, "":
		msg, err := TransactionSyncMessageFromJSON(body)
		if err != nil || msg.ID == "" {
			return fmt.Errorf("%w: %v", errUndecodable, err)
		}
		return h.HandleSync(ctx, msg)
	case TypeTransactionDelete:
		msg, err := TransactionDeleteMessageFromJSON(body)
		if err != nil || msg.ID == "" {
			return fmt.Errorf("%w: %v", errUndecodable, err)
		}
		return h.HandleDelete(ctx, msg)
	default:
		return fmt.Errorf("%w: unknown type %q", errUndecodable, msgType)
	}
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
	c.closeLocked()
	return nil
}
