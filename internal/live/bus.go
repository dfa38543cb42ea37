package live

import (
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// Bus announces that a collection changed. Listeners run on the publishing
// goroutine (LocalBus) or the MQTT client goroutine (MQTTBus) and must not block.
type Bus interface {
	Publish(collection string) error
	Listen(collection string, fn func()) (cancel func())
}

// LocalBus delivers notifications inside the process.
type LocalBus struct {
	mu        sync.RWMutex
	next      int
	listeners map[string]map[int]func()
}

func NewLocalBus() *LocalBus {
	return &LocalBus{listeners: make(map[string]map[int]func())}
}

func (b *LocalBus) Publish(collection string) error {
	b.notify(collection)
	return nil
}

func (b *LocalBus) Listen(collection string, fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	if b.listeners[collection] == nil {
		b.listeners[collection] = make(map[int]func())
	}
	b.listeners[collection][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.listeners[collection], id)
		})
	}
}

func (b *LocalBus) notify(collection string) {
	b.mu.RLock()
	fns := make([]func(), 0, len(b.listeners[collection]))
	for _, fn := range b.listeners[collection] {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

// MQTTConfig configures the broker connection of an MQTTBus.
type MQTTConfig struct {
	Broker      string
	ClientID    string
	TopicPrefix string
}

// MQTTBus publishes change notifications on <prefix>/<collection>/changed so
// every server process sharing the broker refreshes after a write.
type MQTTBus struct {
	client mqtt.Client
	prefix string
	local  *LocalBus
}

// NewMQTTBus connects to the broker and subscribes to all change topics.
// Notifications from this process come back through the broker as well.
func NewMQTTBus(cfg MQTTConfig) (*MQTTBus, error) {
	prefix := strings.Trim(cfg.TopicPrefix, "/")
	if prefix == "" {
		prefix = "detailing"
	}
	bus := &MQTTBus{prefix: prefix, local: NewLocalBus()}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second).
		SetOrderMatters(false)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		topic := prefix + "/+/changed"
		if token := c.Subscribe(topic, 1, bus.handle); token.Wait() && token.Error() != nil {
			log.WithError(token.Error()).WithField("topic", topic).Error("MQTT subscribe failed")
			return
		}
		log.WithField("topic", topic).Info("Subscribed to change notifications")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.WithError(err).Warn("MQTT connection lost")
	})

	bus.client = mqtt.NewClient(opts)
	token := bus.client.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		return nil, fmt.Errorf("mqtt connect %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, err)
	}
	return bus, nil
}

func (b *MQTTBus) Topic(collection string) string {
	return b.prefix + "/" + collection + "/changed"
}

func (b *MQTTBus) Publish(collection string) error {
	token := b.client.Publish(b.Topic(collection), 1, false, []byte(time.Now().UTC().Format(time.RFC3339Nano)))
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish %s: timed out", collection)
	}
	return token.Error()
}

func (b *MQTTBus) Listen(collection string, fn func()) func() {
	return b.local.Listen(collection, fn)
}

func (b *MQTTBus) handle(_ mqtt.Client, msg mqtt.Message) {
	collection, ok := collectionFromTopic(b.prefix, msg.Topic())
	if !ok {
		return
	}
	b.local.notify(collection)
}

// Close disconnects from the broker, waiting briefly for in-flight work.
func (b *MQTTBus) Close() {
	b.client.Disconnect(250)
}

func collectionFromTopic(prefix, topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, prefix+"/")
	if !ok {
		return "", false
	}
	collection, ok := strings.CutSuffix(rest, "/changed")
	if !ok || collection == "" || strings.Contains(collection, "/") {
		return "", false
	}
	return collection, true
}
