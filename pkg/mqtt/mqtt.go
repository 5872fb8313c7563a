package mqtt

import (
	"sync"
	"time"

	mqttlib "github.com/eclipse/paho.mqtt.golang"
	"github.com/womat/debug"
)

const (
	// quiesce is the specified number of milliseconds to wait for existing work to be completed.
	quiesce = 250
	// first and maximum delay between two reconnect attempts
	reconnectDelay    = time.Second
	maxReconnectDelay = time.Minute
	keepAlive         = 120 * time.Second
	// queueSize is the capacity of C
	queueSize = 256
)

// Handler contains the handler of the mqtt broker.
type Handler struct {
	handler mqttlib.Client
	// C is the channel to service the mqtt message
	// sending a message to channel C will send the message.
	// Messages are published in the order they are queued.
	C chan Message

	// subs holds the subscriptions, they are renewed on every (re)connect.
	sl   sync.Mutex
	subs map[string]func(Message)
}

// Message contains the properties of the mqtt message.
type Message struct {
	Topic    string
	Payload  []byte
	Qos      byte
	Retained bool
}

// Options defines the broker connection.
type Options struct {
	// Broker is the broker url, e.g. tcp://127.0.0.1:1883
	Broker   string
	ClientID string
	Username string
	Password string
}

// New generate a new mqtt broker client.
func New() *Handler {
	return &Handler{
		C:    make(chan Message, queueSize),
		subs: map[string]func(Message){},
	}
}

// Connect connects to the mqtt broker.
// If no broker is defined, no mqtt message are send.
func (m *Handler) Connect(o Options) error {
	if o.Broker == "" {
		return nil
	}

	opts := mqttlib.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetUsername(o.Username).
		SetPassword(o.Password).
		SetKeepAlive(keepAlive).
		SetAutoReconnect(true).
		SetConnectRetryInterval(reconnectDelay).
		SetMaxReconnectInterval(maxReconnectDelay).
		SetOnConnectHandler(m.onConnect).
		SetConnectionLostHandler(func(_ mqttlib.Client, err error) {
			debug.ErrorLog.Printf("connection to mqtt broker lost: %v", err)
		})

	m.handler = mqttlib.NewClient(opts)
	return m.ReConnect()
}

// ReConnect reconnects to the defined mqtt broker.
func (m *Handler) ReConnect() error {
	t := m.handler.Connect()
	<-t.Done()
	return t.Error()
}

// Disconnect will end the connection to the broker.
func (m *Handler) Disconnect() error {
	if m.handler == nil {
		return nil
	}

	m.handler.Disconnect(quiesce)
	return nil
}

// Subscribe registers f for messages on topic.
// The subscription is (re)established whenever the client connects.
func (m *Handler) Subscribe(topic string, f func(Message)) {
	m.sl.Lock()
	m.subs[topic] = f
	m.sl.Unlock()

	if m.handler != nil && m.handler.IsConnected() {
		m.subscribe(m.handler, topic, f)
	}
}

func (m *Handler) onConnect(c mqttlib.Client) {
	debug.InfoLog.Print("connected to mqtt broker")

	m.sl.Lock()
	defer m.sl.Unlock()
	for topic, f := range m.subs {
		m.subscribe(c, topic, f)
	}
}

func (m *Handler) subscribe(c mqttlib.Client, topic string, f func(Message)) {
	t := c.Subscribe(topic, 0, func(_ mqttlib.Client, msg mqttlib.Message) {
		debug.DebugLog.Printf("received %v bytes on topic %v", len(msg.Payload()), msg.Topic())
		f(Message{Topic: msg.Topic(), Payload: msg.Payload(), Qos: msg.Qos(), Retained: msg.Retained()})
	})

	go func() {
		<-t.Done()
		if err := t.Error(); err != nil {
			debug.ErrorLog.Printf("subscribing topic %v: %v", topic, err)
		}
	}()
}

// Service listen to a message on the channel C and send the message to mqtt.
// If no handler or topic is defined, the message will be ignored.
func (m *Handler) Service() {
	for d := range m.C {
		if m.handler == nil || d.Topic == "" {
			continue
		}

		if !m.handler.IsConnected() {
			debug.DebugLog.Printf("mqtt broker isn't connected, drop message for topic %v", d.Topic)
			continue
		}

		debug.DebugLog.Printf("publishing %v bytes to topic %v", len(d.Payload), d.Topic)
		t := m.handler.Publish(d.Topic, d.Qos, d.Retained, d.Payload)

		// the asynchronous nature of this library makes it easy to forget to check for errors.
		go func(topic string) {
			<-t.Done()
			if err := t.Error(); err != nil {
				debug.ErrorLog.Printf("publishing topic %v: %v", topic, err)
			}
		}(d.Topic)
	}
}
