package mqtt

import (
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const (
	connectTimeout    = 10 * time.Second
	disconnectQuiesce = 250 // ms
)

var errConnectTimeout = errors.New("timed out connecting to MQTT broker")

// Client owns the broker connection. Subscriber and Publisher share its
// underlying paho client.
type Client struct {
	client mqtt.Client
	logger *zap.Logger
}

// ClientConfig holds MQTT client configuration
type ClientConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// NewClient connects to the broker, waiting at most connectTimeout
func NewClient(config ClientConfig, logger *zap.Logger) (*Client, error) {
	c := &Client{logger: logger}

	opts := mqtt.NewClientOptions().
		AddBroker(config.Broker).
		SetClientID(config.ClientID).
		SetUsername(config.Username).
		SetPassword(config.Password).
		SetDefaultPublishHandler(c.onUnhandled).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost).
		SetAutoReconnect(true).
		SetResumeSubs(true).
		SetOrderMatters(false).
		SetKeepAlive(60 * time.Second).
		SetPingTimeout(10 * time.Second)

	c.client = mqtt.NewClient(opts)

	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: %s", errConnectTimeout, config.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	logger.Info("Connected to broker", zap.String("broker", config.Broker), zap.String("client_id", config.ClientID))
	return c, nil
}

// GetNativeClient returns the paho client used by Subscriber and Publisher
func (c *Client) GetNativeClient() mqtt.Client {
	return c.client
}

func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// Close disconnects after letting in-flight work finish
func (c *Client) Close() {
	c.client.Disconnect(disconnectQuiesce)
	c.logger.Info("Disconnected")
}

func (c *Client) onUnhandled(_ mqtt.Client, msg mqtt.Message) {
	c.logger.Debug("Received message without handler", zap.String("topic", msg.Topic()))
}

func (c *Client) onConnect(mqtt.Client) {
	c.logger.Info("Connection established")
}

func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	c.logger.Warn("Connection lost, reconnecting", zap.Error(err))
}
