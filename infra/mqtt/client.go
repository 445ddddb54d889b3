package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/tariffbroker/core/events"
	"github.com/kilianp07/tariffbroker/core/model"
	"github.com/kilianp07/tariffbroker/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker      string      `json:"broker"`
	ClientID    string      `json:"client_id"`
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	TopicPrefix string      `json:"topic_prefix"`
	QoS         byte        `json:"qos"`
	Retain      bool        `json:"retain"`
	UseTLS      bool        `json:"use_tls"`
	ClientCert  string      `json:"client_cert"`
	ClientKey   string      `json:"client_key"`
	CABundle    string      `json:"ca_bundle"`
	MaxRetries  int         `json:"max_retries"`
	BackoffMS   int         `json:"backoff_ms"`
	TLSConfig   *tls.Config `json:"-"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "tariffbroker"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "tariffbroker"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

// Enabled reports whether a broker is configured.
func (c Config) Enabled() bool { return c.Broker != "" }

// Validate checks the QoS level.
func (c Config) Validate() error {
	if c.QoS > 2 {
		return fmt.Errorf("mqtt: qos must be 0, 1 or 2, got %d", c.QoS)
	}
	return nil
}

// DecisionTopic is where selected actions for the named broker are published.
func (c Config) DecisionTopic(broker string) string {
	return fmt.Sprintf("%s/%s/decision", strings.TrimSuffix(c.TopicPrefix, "/"), broker)
}

// StatusTopic carries the retained online/offline status of the named broker.
func (c Config) StatusTopic(broker string) string {
	return fmt.Sprintf("%s/%s/status", strings.TrimSuffix(c.TopicPrefix, "/"), broker)
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// DecisionMessage is the JSON payload of a decision announcement.
type DecisionMessage struct {
	DecisionID     string            `json:"decision_id"`
	Broker         string            `json:"broker"`
	Timeslot       int               `json:"timeslot"`
	Strategy       string            `json:"strategy"`
	Action         string            `json:"action"`
	Tariff         *model.TariffSpec `json:"tariff,omitempty"`
	Utility        float64           `json:"utility"`
	NoOpUtility    float64           `json:"noop_utility"`
	WarmupOverride bool              `json:"warmup_override"`
	DecidedAt      int64             `json:"decided_at"`
}

// MessageFromEvent converts a decision event into its wire payload.
func MessageFromEvent(ev events.DecisionEvent) DecisionMessage {
	return DecisionMessage{
		DecisionID:     ev.ID,
		Broker:         ev.Broker,
		Timeslot:       ev.Timeslot,
		Strategy:       ev.Strategy,
		Action:         ev.Action.Kind.String(),
		Tariff:         ev.Action.Tariff,
		Utility:        ev.Utility,
		NoOpUtility:    ev.NoOpUtility,
		WarmupOverride: ev.WarmupOverride,
		DecidedAt:      ev.DecidedAt.UnixMilli(),
	}
}

// DecisionPublisher announces selected actions on MQTT for observers.
type DecisionPublisher struct {
	cli        pahoClient
	broker     string
	cfg        Config
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
}

// NewDecisionPublisher connects to the MQTT broker. The publisher marks the
// agent online on its status topic and registers an offline will.
func NewDecisionPublisher(cfg Config, broker string) (*DecisionPublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg, broker)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	p := &DecisionPublisher{
		broker:     broker,
		cfg:        cfg,
		logger:     log,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	status := cfg.StatusTopic(broker)
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Publish(status, cfg.QoS, true, "online"); token.Wait() && token.Error() != nil {
			log.Errorf("status publish error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p.cli = c
	return p, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config, broker string) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	opts.SetWill(cfg.StatusTopic(broker), "offline", cfg.QoS, true)
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// PublishDecision sends the decision with exponential backoff between
// attempts. It gives up early when ctx is canceled.
func (p *DecisionPublisher) PublishDecision(ctx context.Context, ev events.DecisionEvent) error {
	payload, err := json.Marshal(MessageFromEvent(ev))
	if err != nil {
		return err
	}
	topic := p.cfg.DecisionTopic(p.broker)
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.cfg.QoS, p.cfg.Retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published decision for timeslot %d to %s", ev.Timeslot, topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		}
	}
	return fmt.Errorf("publish decision: %w", publishErr)
}

// Close marks the agent offline and disconnects.
func (p *DecisionPublisher) Close() error {
	if p.cli == nil || !p.cli.IsConnected() {
		return nil
	}
	token := p.cli.Publish(p.cfg.StatusTopic(p.broker), p.cfg.QoS, true, "offline")
	token.WaitTimeout(time.Second)
	p.cli.Disconnect(250)
	return nil
}
