// Package mqtt streams dispatch records to an MQTT broker so external
// consumers can follow a simulation run live. The publisher is optional;
// the simulation core never depends on it.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/shanchengnb/fire-egine-dispatch/core/model"
	"github.com/shanchengnb/fire-egine-dispatch/infra/logger"
)

// Config defines the connection parameters for the record publisher.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "fire-dispatch"
	}
	if c.Topic == "" {
		c.Topic = "dispatch/records"
	}
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

// RecordPublisher publishes dispatch records as JSON messages, tagged with
// the run id they belong to.
type RecordPublisher struct {
	cli   pahoClient
	topic string
	qos   byte
	runID string
	log   logger.Logger
}

type recordMessage struct {
	RunID string `json:"run_id"`
	Step  int    `json:"step"`
	model.DispatchRecord
}

// NewRecordPublisher connects to the broker and returns the publisher.
func NewRecordPublisher(cfg Config) (*RecordPublisher, error) {
	cfg.SetDefaults()
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(5 * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	cli := newMQTTClient(opts)
	tok := cli.Connect()
	if ok := tok.WaitTimeout(10 * time.Second); !ok {
		return nil, fmt.Errorf("mqtt connect timeout to %s", cfg.Broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	return &RecordPublisher{
		cli:   cli,
		topic: cfg.Topic,
		qos:   cfg.QoS,
		runID: uuid.NewString(),
		log:   logger.New("mqtt_publisher"),
	}, nil
}

// RunID returns the identifier stamped on every message of this run.
func (p *RecordPublisher) RunID() string { return p.runID }

// Publish sends one dispatch record. Failures are reported, not fatal.
func (p *RecordPublisher) Publish(step int, rec model.DispatchRecord) error {
	payload, err := encodeRecord(p.runID, step, rec)
	if err != nil {
		return err
	}
	tok := p.cli.Publish(p.topic, p.qos, false, payload)
	if ok := tok.WaitTimeout(5 * time.Second); !ok {
		return fmt.Errorf("mqtt publish timeout")
	}
	return tok.Error()
}

// Close disconnects from the broker.
func (p *RecordPublisher) Close() {
	p.cli.Disconnect(250)
}

func encodeRecord(runID string, step int, rec model.DispatchRecord) ([]byte, error) {
	msg := recordMessage{RunID: runID, Step: step, DispatchRecord: rec}
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return b, nil
}
