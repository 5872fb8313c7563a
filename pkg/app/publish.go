package app

import (
	"encoding/json"
	"strings"

	"github.com/womat/debug"

	"ledseq/pkg/mqtt"
)

const (
	stateTopic = "state"
	setTopic   = "set"

	sourceMQTT = "mqtt"
)

// publishState sends the state of ch to <topic>/<channel>/state.
func (app *App) publishState(ch *channel) {
	if app.config.MQTT.Connection == "" || app.config.MQTT.Topic == "" {
		return
	}
	app.sendMQTT(app.config.MQTT.Topic+"/"+ch.name+"/"+stateTopic, app.status(ch))
}

// sendMQTT queues the message struct for the mqtt broker.
// It is called from the control loop, so the queue keeps the order of the state changes.
// The loop never waits for the broker, a message is dropped if the queue is full.
func (app *App) sendMQTT(topic string, message interface{}) {
	debug.TraceLog.Printf("prepare mqtt message %v %v", topic, message)

	b, err := json.Marshal(message)
	if err != nil {
		debug.ErrorLog.Printf("sendMQTT marshal: %v", err)
		return
	}

	select {
	case app.mqtt.C <- mqtt.Message{
		Qos:      0,
		Retained: true,
		Topic:    topic,
		Payload:  b,
	}:
	default:
		debug.ErrorLog.Printf("mqtt queue is full, drop message for topic %v", topic)
	}
}

// subscribeMQTT listens for commands on <topic>/+/set.
func (app *App) subscribeMQTT() {
	if app.config.MQTT.Connection == "" || app.config.MQTT.Topic == "" {
		return
	}
	app.mqtt.Subscribe(app.config.MQTT.Topic+"/+/"+setTopic, app.handleMQTT)
}

// handleMQTT executes the action in the payload on the channel named by the topic.
func (app *App) handleMQTT(msg mqtt.Message) {
	name, ok := channelFromTopic(app.config.MQTT.Topic, msg.Topic)
	if !ok {
		debug.ErrorLog.Printf("mqtt: unexpected topic %q", msg.Topic)
		return
	}

	c, err := parseAction(string(msg.Payload))
	if err != nil {
		debug.ErrorLog.Printf("mqtt: channel %q: %v", name, err)
		return
	}

	c.channel, c.source = name, sourceMQTT
	if err = app.do(c).err; err != nil {
		debug.ErrorLog.Printf("mqtt: channel %q: %v", name, err)
	}
}

// channelFromTopic extracts the channel of <prefix>/<channel>/set.
func channelFromTopic(prefix, topic string) (string, bool) {
	rest := strings.TrimPrefix(topic, prefix+"/")
	if rest == topic {
		return "", false
	}

	name := strings.TrimSuffix(rest, "/"+setTopic)
	if name == rest || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}
