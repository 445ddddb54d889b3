package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDecisionPublisherMosquitto publishes through a real Mosquitto broker.
func TestDecisionPublisherMosquitto(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "eclipse-mosquitto:1.6",
			ExposedPorts: []string{"1883/tcp"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer func() { _ = container.Terminate(ctx) }()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "1883")
	require.NoError(t, err)
	url := fmt.Sprintf("tcp://%s:%s", host, port.Port())

	sub := paho.NewClient(paho.NewClientOptions().AddBroker(url).SetClientID("observer"))
	var tok paho.Token
	for i := 0; i < 10; i++ {
		tok = sub.Connect()
		if tok.Wait() && tok.Error() == nil {
			break
		}
		time.Sleep(300 * time.Millisecond)
	}
	require.NoError(t, tok.Error())
	defer sub.Disconnect(100)

	cfg := Config{Broker: url, ClientID: "agent", QoS: 1}
	msgs := make(chan DecisionMessage, 1)
	tok = sub.Subscribe("tariffbroker/me/decision", 1, func(_ paho.Client, m paho.Message) {
		var dm DecisionMessage
		if json.Unmarshal(m.Payload(), &dm) == nil {
			msgs <- dm
		}
	})
	tok.Wait()
	require.NoError(t, tok.Error())

	p, err := NewDecisionPublisher(cfg, "me")
	require.NoError(t, err)
	defer func() { _ = p.Close() }()
	require.NoError(t, p.PublishDecision(ctx, sampleEvent()))

	select {
	case got := <-msgs:
		assert.Equal(t, 12, got.Timeslot)
		assert.Equal(t, "publish", got.Action)
	case <-time.After(5 * time.Second):
		t.Fatal("decision not received")
	}
}
