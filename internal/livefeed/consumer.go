package livefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/myce/chatpager/internal/pager"
)

// Consumer feeds room events into a pager. When roomID is non-empty,
// message events for other rooms are acked and dropped.
type Consumer struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	queue  string
	pager  *pager.Pager
	roomID string
}

func NewConsumer(url, queue, roomID string, p *pager.Pager) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := declareTopology(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Consumer{conn: conn, ch: ch, queue: queue, pager: p, roomID: roomID}, nil
}

func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Run consumes until ctx is done. Undecodable events are nacked without
// requeue and land in the DLQ.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.ch.Qos(1, 0, false); err != nil {
		return err
	}

	deliveries, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			if err := c.dispatch(d.Body); err != nil {
				log.Printf("[livefeed] bad event: %v", err)
				_ = d.Nack(false, false)
				continue
			}
			if err := d.Ack(false); err != nil {
				log.Printf("[livefeed] ack failed: %v", err)
			}
		}
	}
}

func (c *Consumer) dispatch(body []byte) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return err
	}

	switch ev.Type {
	case EventMessage:
		if ev.Message == nil {
			return fmt.Errorf("livefeed: %s event without message", EventMessage)
		}
		if c.roomID != "" && ev.Message.RoomID != c.roomID {
			return nil
		}
		c.pager.AppendLive(*ev.Message)
		return nil

	case EventRead:
		if ev.ID == "" {
			return fmt.Errorf("livefeed: %s event without id", EventRead)
		}
		c.pager.UpdateOne(ev.ID, func(m *pager.Message) { m.Read = true })
		return nil

	default:
		return fmt.Errorf("livefeed: unknown event type %q", ev.Type)
	}
}
