package publish

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ernie/minictrl/internal/csgolog"
	"github.com/ernie/minictrl/internal/domain"
)

func setup(t *testing.T) (*Publisher, *nats.Conn) {
	t.Helper()

	srv, err := StartEmbedded(-1)
	require.NoError(t, err)
	t.Cleanup(srv.Shutdown)

	pub, err := Connect(srv.ClientURL(), "csgo")
	require.NoError(t, err)
	t.Cleanup(func() { pub.Close() })

	sub, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(sub.Close)

	return pub, sub
}

func event(t *testing.T, server, line string) domain.Event {
	t.Helper()
	entry, err := csgolog.Default().Parse(line)
	require.NoError(t, err)
	return domain.NewEvent(server, entry, nil)
}

func TestSubject(t *testing.T) {
	p := &Publisher{prefix: "csgo"}
	assert.Equal(t, "csgo.retake.killed", p.Subject("retake", "killed"))
	assert.Equal(t, "csgo.eu_1_retake.killed", p.Subject("eu.1 retake", "killed"))
	assert.Equal(t, "csgo._.killed", p.Subject("", "killed"))
}

func TestPublishEvent(t *testing.T) {
	pub, sub := setup(t)

	msgs := make(chan *nats.Msg, 4)
	_, err := sub.ChanSubscribe("csgo.retake.>", msgs)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	ctx := context.Background()
	require.NoError(t, pub.Publish(ctx, event(t, "retake", `L 10/03/2021 - 19:45:40: Loading map "de_inferno"`)))
	require.NoError(t, pub.Flush(ctx))

	select {
	case msg := <-msgs:
		assert.Equal(t, "csgo.retake.loading_map", msg.Subject)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(msg.Data, &decoded))
		assert.Equal(t, "loading_map", decoded["event"])
		assert.Equal(t, "retake", decoded["server"])
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}

func TestPublishGet5PayloadRaw(t *testing.T) {
	pub, sub := setup(t)

	raw, err := sub.SubscribeSync("csgo.retake.get5")
	require.NoError(t, err)
	wrapped, err := sub.SubscribeSync("csgo.retake.get5_event")
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	payload := `{"event": "series_start", "team1_name": "Équipe"}`
	ctx := context.Background()
	require.NoError(t, pub.Publish(ctx, event(t, "retake", `L 10/03/2021 - 19:45:40: get5_event: `+payload)))
	require.NoError(t, pub.Flush(ctx))

	msg, err := raw.NextMsg(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, payload, string(msg.Data))

	_, err = wrapped.NextMsg(5 * time.Second)
	require.NoError(t, err)
}

func TestPublishCancelledContext(t *testing.T) {
	pub, _ := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pub.Publish(ctx, event(t, "retake", `L 10/03/2021 - 19:45:40: Log file closed`)), context.Canceled)
}

func TestFlushBoundsContextWithoutDeadline(t *testing.T) {
	pub, _ := setup(t)

	require.NoError(t, pub.Flush(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pub.Flush(ctx))
}
