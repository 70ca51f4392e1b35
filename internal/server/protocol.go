package server

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gildhall/gildhall-server-go/internal/game"
	"github.com/gildhall/gildhall-server-go/internal/game/targeting"
	"github.com/gildhall/gildhall-server-go/internal/leaderboard"
)

// Client-to-server message types.
const (
	MsgLogin           = "login"
	MsgRegister        = "register"
	MsgRequestReset    = "request_reset"
	MsgResetPassword   = "reset_password"
	MsgStartRun        = "start_run"
	MsgPlayCard        = "play_card"
	MsgSelectTargets   = "select_targets"
	MsgCancelTargeting = "cancel_targeting"
	MsgEndTurn         = "end_turn"
	MsgChoosePromotion = "choose_promotion"
	MsgAbandonRun      = "abandon_run"
	MsgLeaderboard     = "leaderboard"
	MsgPing            = "ping"
)

// Message types used in both directions ("view") or server-to-client only.
const (
	MsgView                = "view"
	MsgHello               = "hello"
	MsgLoginOK             = "login_ok"
	MsgRegisterOK          = "register_ok"
	MsgResetOK             = "reset_ok"
	MsgTargetingRequired   = "targeting_required"
	MsgEffectExecuted      = "effect_executed"
	MsgActivationCompleted = "activation_completed"
	MsgPrompt              = "prompt"
	MsgRunOver             = "run_over"
	MsgError               = "error"
	MsgPong                = "pong"
)

// ClientMessage is the flat request envelope read off the websocket. Which
// fields matter depends on Type.
type ClientMessage struct {
	Type        string   `json:"type"`
	Name        string   `json:"name,omitempty"`
	Password    string   `json:"password,omitempty"`
	NewPassword string   `json:"new_password,omitempty"`
	Token       string   `json:"token,omitempty"`
	Seed        int64    `json:"seed,omitempty"`
	CardID      string   `json:"card_id,omitempty"`
	Targets     []string `json:"targets,omitempty"`
	UnitID      string   `json:"unit_id,omitempty"`
	JobID       string   `json:"job_id,omitempty"`
	Limit       int      `json:"limit,omitempty"`
}

// ServerMessage is the response/push envelope written to the websocket.
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// HelloData greets a fresh connection with its session lease.
type HelloData struct {
	SessionID     string `json:"session_id"`
	ServerVersion string `json:"server_version"`
}

// AuthData acknowledges a successful login or registration.
type AuthData struct {
	Name string `json:"name"`
}

// ErrorData names the operation that failed and why.
type ErrorData struct {
	Op      string `json:"op,omitempty"`
	Message string `json:"message"`
}

// TargetingData carries a suspended activation's selection request.
type TargetingData struct {
	RunID   string             `json:"run_id"`
	Request *targeting.Request `json:"request"`
}

// RunEventData mirrors a run notification onto the wire.
type RunEventData struct {
	RunID     string    `json:"run_id"`
	SourceID  string    `json:"source_id,omitempty"`
	TargetID  string    `json:"target_id,omitempty"`
	Amount    int       `json:"amount,omitempty"`
	Data      string    `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RunOverData closes out a run for the client.
type RunOverData struct {
	RunID     string        `json:"run_id"`
	Score     int           `json:"score"`
	EndReason string        `json:"end_reason"`
	View      *game.RunView `json:"view,omitempty"`
}

// LeaderboardData answers a leaderboard query.
type LeaderboardData struct {
	Top       []leaderboard.Entry    `json:"top"`
	Standings []leaderboard.Standing `json:"standings"`
}

// ParseClientMessage decodes and minimally validates a client envelope.
func ParseClientMessage(raw []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("decode message: %w", err)
	}
	msg.Type = strings.TrimSpace(msg.Type)
	if msg.Type == "" {
		return ClientMessage{}, fmt.Errorf("message type is required")
	}
	return msg, nil
}

func encodeServerMessage(msg ServerMessage) ([]byte, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", msg.Type, err)
	}
	return raw, nil
}

func errorMessage(op, message string) ServerMessage {
	return ServerMessage{Type: MsgError, Data: ErrorData{Op: op, Message: message}}
}
