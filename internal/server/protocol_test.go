package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseClientMessageReadsTheEnvelope decodes a full play_card message.
func TestParseClientMessageReadsTheEnvelope(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"play_card","card_id":"c-9"}`))
	require.NoError(t, err)
	assert.Equal(t, MsgPlayCard, msg.Type)
	assert.Equal(t, "c-9", msg.CardID)
}

// TestParseClientMessageTrimsTheType tolerates whitespace around the type.
func TestParseClientMessageTrimsTheType(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"  ping  "}`))
	require.NoError(t, err)
	assert.Equal(t, MsgPing, msg.Type)
}

// TestParseClientMessageRejectsGarbage covers missing type and broken JSON.
func TestParseClientMessageRejectsGarbage(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"card_id":"c-9"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type is required")

	_, err = ParseClientMessage([]byte(`{not json`))
	require.Error(t, err)
}

// TestServerMessageWireShape checks the envelope serializes as {type,data}.
func TestServerMessageWireShape(t *testing.T) {
	raw, err := encodeServerMessage(ServerMessage{
		Type: MsgRunOver,
		Data: RunOverData{RunID: "run-1", Score: 17, EndReason: "turn limit reached"},
	})
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Contains(t, decoded, "type")
	require.Contains(t, decoded, "data")

	var payload RunOverData
	require.NoError(t, json.Unmarshal(decoded["data"], &payload))
	assert.Equal(t, "run-1", payload.RunID)
	assert.Equal(t, 17, payload.Score)
}

// TestErrorMessageCarriesOpAndText checks the error envelope helper.
func TestErrorMessageCarriesOpAndText(t *testing.T) {
	msg := errorMessage(MsgEndTurn, "not in main phase")
	assert.Equal(t, MsgError, msg.Type)

	payload, ok := msg.Data.(ErrorData)
	require.True(t, ok)
	assert.Equal(t, MsgEndTurn, payload.Op)
	assert.Equal(t, "not in main phase", payload.Message)
}
