package application

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/rocketscienceinc/kuba-backend/internal/config"
	"github.com/rocketscienceinc/kuba-backend/internal/entity"
	"github.com/rocketscienceinc/kuba-backend/internal/kuba"
	"github.com/rocketscienceinc/kuba-backend/internal/transport/stream"
	"github.com/rocketscienceinc/kuba-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_EmptyRedisAddr(t *testing.T) {
	// Given: a config without a Redis host
	conf := &config.Config{Redis: config.Redis{Port: "6379"}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// When: the app is run
	err := Run(logger, conf, strings.NewReader(""), &bytes.Buffer{})

	// Then: it refuses to start
	require.ErrorIs(t, err, ErrAddrNotFound)
}

func TestRun_Commands(t *testing.T) {
	_, st := suite.New(t)

	// Given: a config pointing at the test Redis
	conf := &config.Config{Redis: config.Redis{Host: st.Host, Port: st.Port}}

	input := strings.Join([]string{
		`{"action":"game:new","payload":{"players":[{"name":"alice","color":"W"},{"name":"bob","color":"B"}]}}`,
		`{"action":"game:move","payload":{"player":"alice","move":{"position":{"row":6,"column":5},"direction":"F"}}}`,
		`{"action":"game:move","payload":{"player":"alice","move":{"position":{"row":0,"column":0},"direction":"B"}}}`,
	}, "\n")

	// When: the app processes the commands
	var out bytes.Buffer
	require.NoError(t, Run(st.Logger, conf, strings.NewReader(input), &out))

	// Then: the game is created, the first move is accepted and the second is out of turn
	var responses []stream.ResponsePayload

	decoder := json.NewDecoder(&out)
	for decoder.More() {
		var msg stream.Message
		require.NoError(t, decoder.Decode(&msg))

		var payload stream.ResponsePayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		responses = append(responses, payload)
	}

	require.Len(t, responses, 3)
	assert.Empty(t, responses[0].Error)
	assert.Equal(t, entity.StatusWaiting, responses[0].Game.Status)
	assert.Empty(t, responses[1].Error)
	assert.Equal(t, "bob", responses[1].Game.Engine.CurrentTurn())
	assert.Contains(t, responses[2].Error, kuba.ErrNotYourTurn.Error())
}
