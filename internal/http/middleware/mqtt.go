package middleware

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// Off-box surfaces (presenter tablets, wall clocks) that cannot hold a
// websocket subscribe to rundown/<id>/events instead. The broker is optional:
// when InitMQTT was never called, publishing is a no-op.

var mqttClient mqtt.Client

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// InitMQTT connects the shared client to the broker.
func InitMQTT(brokerURL string, clientName string) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientName)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	mqttClient = client
	return nil
}

// PublishRundownEvent publishes an event payload to the rundown's topic.
// Fire-and-forget from the caller's point of view; failures are logged.
func PublishRundownEvent(rundownID int, event any) {
	if mqttClient == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Int("rundown_id", rundownID).Msg("failed to marshal rundown event")
		return
	}

	topic := fmt.Sprintf("rundown/%d/events", rundownID)
	token := mqttClient.Publish(topic, 1, false, payload)
	token.Wait()
	if token.Error() != nil {
		log.Error().Err(token.Error()).Str("topic", topic).Msg("failed to publish rundown event")
	}
}

// CleanupMQTT disconnects the shared client.
func CleanupMQTT() {
	if mqttClient != nil {
		mqttClient.Disconnect(250)
		mqttClient = nil
		log.Info().Msg("MQTT client disconnected")
	}
}
