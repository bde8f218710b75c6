package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// bufferCapacity bounds how many messages are held while disconnected.
// E-stop transitions are rare, so a small buffer covers long outages.
const bufferCapacity = 64

// RealPublisher publishes to an actual MQTT broker. Messages published
// while the broker is unreachable are buffered and replayed on reconnect.
type RealPublisher struct {
	client paho.Client

	mu  sync.Mutex
	buf *ringBuffer
}

// NewRealPublisher creates a publisher for the given broker. The connection
// is established in the background with retry; publishes before the first
// connect are buffered.
func NewRealPublisher(broker string) *RealPublisher {
	p := &RealPublisher{
		buf: newRingBuffer(bufferCapacity),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("estop-controller").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(paho.Client) {
			p.drainBuffer()
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	p.client.Connect() // retries in the background; token intentionally not awaited

	return p
}

// Publish sends a transition event to the MQTT broker, buffering it if the
// broker is unreachable.
func (p *RealPublisher) Publish(event TransitionEvent) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 1 (at-least-once): a missed e-stop transition is worse than a duplicate.
	return p.send(Topic, payload, 1, false)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	return p.send(TopicSystem, payload, 1, event.Retained)
}

// IsConnected reports whether the broker connection is currently up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}

func (p *RealPublisher) send(topic string, payload []byte, qos byte, retained bool) error {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.buf.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		n := p.buf.len()
		p.mu.Unlock()
		return fmt.Errorf("broker unreachable, buffered (%d pending)", n)
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// drainBuffer replays buffered messages after (re)connection.
func (p *RealPublisher) drainBuffer() {
	p.mu.Lock()
	msgs := p.buf.drainAll()
	p.mu.Unlock()

	if len(msgs) == 0 {
		return
	}
	log.Printf("mqtt: connected, replaying %d buffered messages", len(msgs))

	for _, m := range msgs {
		token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
		if !token.WaitTimeout(5 * time.Second) {
			log.Printf("mqtt: replay timeout on %s", m.topic)
			continue
		}
		if err := token.Error(); err != nil {
			log.Printf("mqtt: replay failed on %s: %v", m.topic, err)
		}
	}
}
