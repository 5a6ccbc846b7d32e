// Package bridge feeds events published on an MQTT topic through the same
// rule dispatch pipeline as the webhook endpoint. Optional: it is only
// started when a broker is configured.
package bridge

import (
	"context"
	"log"
	"time"

	"hookrelay/internal/dispatch"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Bridge subscribes to an events topic and dispatches each message body as
// an inbound payload.
type Bridge struct {
	client  mqtt.Client
	topic   string
	service *dispatch.Service
}

// Connect connects to the broker and returns a bridge ready to start.
func Connect(broker, clientID, topic string, service *dispatch.Service) (*Bridge, error) {
	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Bridge{client: client, topic: topic, service: service}, nil
}

// Start subscribes to the events topic.
func (b *Bridge) Start() error {
	log.Printf("BRIDGE: Subscribing to MQTT topic: %s", b.topic)
	token := b.client.Subscribe(b.topic, 1, b.onEvent)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Stop disconnects from the broker.
func (b *Bridge) Stop() {
	b.client.Disconnect(250)
	log.Println("BRIDGE: Disconnected from MQTT broker")
}

// onEvent runs one dispatch cycle for a published event. Errors are logged;
// there is no caller to answer on this path.
func (b *Bridge) onEvent(_ mqtt.Client, msg mqtt.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	summary, err := b.service.Process(ctx, msg.Payload())
	if err != nil {
		log.Printf("BRIDGE: Process event from %s: %v", msg.Topic(), err)
		return
	}
	log.Printf("BRIDGE: Event from %s: matched=%d sent=%d", msg.Topic(), summary.Matched, summary.Sent)
}
