package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gildhall/gildhall-server-go/internal/auth"
	"github.com/gildhall/gildhall-server-go/internal/game"
	"github.com/gildhall/gildhall-server-go/internal/game/rules"
	"github.com/gildhall/gildhall-server-go/internal/leaderboard"
	"github.com/gildhall/gildhall-server-go/internal/repository"
	"github.com/gildhall/gildhall-server-go/internal/session"
)

const storeTimeout = 5 * time.Second

// AccountStore is the account backend the gateway authenticates against.
// repository.AccountRepository implements it; a memory store stands in when
// the server runs without a database.
type AccountStore interface {
	Create(ctx context.Context, name, passwordHash string) error
	GetByName(ctx context.Context, name string) (*repository.Account, error)
	UpdatePassword(ctx context.Context, name, passwordHash string) error
}

// RunArchiver persists finished runs. May be nil when persistence is off.
type RunArchiver interface {
	InsertFinished(ctx context.Context, run repository.FinishedRun) error
}

// GatewayDeps bundles everything the gateway needs.
type GatewayDeps struct {
	Service  game.Service
	Sessions *session.Manager
	Accounts AccountStore
	Tokens   *auth.TokenStore
	Board    *leaderboard.Manager
	Archive  RunArchiver

	MaxSessions       int
	MinPasswordLength int
	AdminPassword     string
	Version           string
}

// Gateway is the websocket front door: it owns the connected clients,
// translates envelopes into service calls, and fans run events back out to
// the owning client.
type Gateway struct {
	logger   *zap.Logger
	service  game.Service
	sessions *session.Manager
	accounts AccountStore
	tokens   *auth.TokenStore
	board    *leaderboard.Manager
	archive  RunArchiver

	maxSessions int
	minPassword int
	adminPass   string
	version     string

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*Client]struct{}
	byRun   map[string]*Client

	httpSrv *http.Server
}

// NewGateway wires a gateway and registers it as the service's push
// subscriber.
func NewGateway(deps GatewayDeps, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Accounts == nil {
		deps.Accounts = NewMemoryAccounts()
	}
	if deps.Tokens == nil {
		deps.Tokens = auth.NewTokenStore(15 * time.Minute)
	}
	if deps.Board == nil {
		deps.Board = leaderboard.NewManager(logger)
	}
	if deps.MaxSessions <= 0 {
		deps.MaxSessions = 500
	}
	if deps.MinPasswordLength <= 0 {
		deps.MinPasswordLength = 8
	}

	gw := &Gateway{
		logger:      logger,
		service:     deps.Service,
		sessions:    deps.Sessions,
		accounts:    deps.Accounts,
		tokens:      deps.Tokens,
		board:       deps.Board,
		archive:     deps.Archive,
		maxSessions: deps.MaxSessions,
		minPassword: deps.MinPasswordLength,
		adminPass:   deps.AdminPassword,
		version:     deps.Version,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // browser clients connect from any host
			},
		},
		clients: make(map[*Client]struct{}),
		byRun:   make(map[string]*Client),
	}

	gw.service.SetNotificationHandler(gw.handleNotification)
	return gw
}

// Handler returns the HTTP mux serving the websocket endpoint and a health
// probe.
func (gw *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}

// ListenAndServe blocks serving the gateway on addr.
func (gw *Gateway) ListenAndServe(addr string) error {
	gw.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           gw.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	gw.logger.Info("websocket gateway listening", zap.String("address", addr))
	return gw.httpSrv.ListenAndServe()
}

// Shutdown stops the HTTP server gracefully.
func (gw *Gateway) Shutdown(ctx context.Context) error {
	if gw.httpSrv == nil {
		return nil
	}
	return gw.httpSrv.Shutdown(ctx)
}

// ==================== Connection lifecycle ====================

func (gw *Gateway) serveWS(w http.ResponseWriter, r *http.Request) {
	if gw.sessions.Count() >= gw.maxSessions {
		gw.logger.Warn("rejecting connection, session limit reached",
			zap.Int("max_sessions", gw.maxSessions))
		http.Error(w, "server full", http.StatusServiceUnavailable)
		return
	}

	conn, err := gw.upgrader.Upgrade(w, r, nil)
	if err != nil {
		gw.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sess := gw.sessions.CreateSession("", hostFromRemoteAddr(r.RemoteAddr))
	client := newClient(gw, conn, sess.ID)

	gw.mu.Lock()
	gw.clients[client] = struct{}{}
	total := len(gw.clients)
	gw.mu.Unlock()

	gw.logger.Info("client connected",
		zap.String("session_id", sess.ID),
		zap.String("host", sess.Host()),
		zap.Int("clients", total),
	)

	client.enqueue(ServerMessage{Type: MsgHello, Data: HelloData{
		SessionID:     sess.ID,
		ServerVersion: gw.version,
	}})

	go client.writePump()
	go client.readPump()
}

func (gw *Gateway) unregister(c *Client) {
	gw.mu.Lock()
	_, known := gw.clients[c]
	delete(gw.clients, c)
	if runID := c.RunID(); runID != "" && gw.byRun[runID] == c {
		delete(gw.byRun, runID)
	}
	gw.mu.Unlock()

	if !known {
		return
	}
	close(c.send)
	gw.sessions.RemoveSession(c.sessionID)

	// A run whose owner walks away is abandoned; nobody else can drive it.
	if runID := c.RunID(); runID != "" {
		if view, err := gw.service.View(runID); err == nil && !view.Over {
			if err := gw.service.AbandonRun(runID); err != nil {
				gw.logger.Warn("failed to abandon orphaned run",
					zap.String("run_id", runID), zap.Error(err))
			} else {
				gw.logger.Info("abandoned orphaned run", zap.String("run_id", runID))
			}
		}
	}

	gw.logger.Info("client disconnected", zap.String("session_id", c.sessionID))
}

func (gw *Gateway) bindRun(runID string, c *Client) {
	gw.mu.Lock()
	gw.byRun[runID] = c
	gw.mu.Unlock()
	c.setRunID(runID)
}

func (gw *Gateway) unbindRun(runID string) {
	gw.mu.Lock()
	c := gw.byRun[runID]
	delete(gw.byRun, runID)
	gw.mu.Unlock()
	if c != nil && c.RunID() == runID {
		c.setRunID("")
	}
}

func (gw *Gateway) clientForRun(runID string) *Client {
	gw.mu.RLock()
	defer gw.mu.RUnlock()
	return gw.byRun[runID]
}

// ==================== Message dispatch ====================

func (gw *Gateway) handleMessage(c *Client, msg ClientMessage) {
	gw.sessions.UpdateActivity(c.sessionID)

	switch msg.Type {
	case MsgLogin:
		gw.handleLogin(c, msg)
	case MsgRegister:
		gw.handleRegister(c, msg)
	case MsgRequestReset:
		gw.handleRequestReset(c, msg)
	case MsgResetPassword:
		gw.handleResetPassword(c, msg)
	case MsgStartRun:
		gw.handleStartRun(c, msg)
	case MsgPlayCard:
		gw.handlePlayCard(c, msg)
	case MsgSelectTargets:
		gw.handleSelectTargets(c, msg)
	case MsgCancelTargeting:
		gw.handleCancelTargeting(c)
	case MsgEndTurn:
		gw.handleEndTurn(c)
	case MsgChoosePromotion:
		gw.handleChoosePromotion(c, msg)
	case MsgView:
		gw.handleView(c)
	case MsgAbandonRun:
		gw.handleAbandonRun(c)
	case MsgLeaderboard:
		gw.handleLeaderboard(c, msg)
	case MsgPing:
		c.enqueue(ServerMessage{Type: MsgPong})
	default:
		gw.logger.Warn("unknown message type",
			zap.String("type", msg.Type),
			zap.String("session_id", c.sessionID))
		c.enqueue(errorMessage(msg.Type, "unknown message type"))
	}
}

// ==================== Auth ====================

func (gw *Gateway) handleLogin(c *Client, msg ClientMessage) {
	name := strings.TrimSpace(msg.Name)
	if name == "" || msg.Password == "" {
		c.enqueue(errorMessage(MsgLogin, "name and password are required"))
		return
	}

	sess, ok := gw.sessions.GetSession(c.sessionID)
	if !ok {
		c.enqueue(errorMessage(MsgLogin, "session not found"))
		return
	}

	// The admin account lives in config, not in the account store. An
	// empty admin password disables it outright.
	if name == "admin" {
		if gw.adminPass == "" || msg.Password != gw.adminPass {
			gw.logger.Warn("admin login rejected", zap.String("session_id", c.sessionID))
			c.enqueue(errorMessage(MsgLogin, "invalid credentials"))
			return
		}
		sess.SetUserID(name)
		sess.SetAdmin(true)
		gw.logger.Info("admin logged in", zap.String("session_id", c.sessionID))
		c.enqueue(ServerMessage{Type: MsgLoginOK, Data: AuthData{Name: name}})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	acc, err := gw.accounts.GetByName(ctx, name)
	if err != nil || !auth.CheckPassword(acc.PasswordHash, msg.Password) {
		// One message for both failure modes; account existence stays private.
		gw.logger.Debug("login rejected", zap.String("name", name))
		c.enqueue(errorMessage(MsgLogin, "invalid credentials"))
		return
	}

	sess.SetUserID(name)
	gw.logger.Info("user logged in",
		zap.String("name", name),
		zap.String("session_id", c.sessionID))
	c.enqueue(ServerMessage{Type: MsgLoginOK, Data: AuthData{Name: name}})
}

func (gw *Gateway) handleRegister(c *Client, msg ClientMessage) {
	name := strings.TrimSpace(msg.Name)
	if len(name) < 3 || len(name) > 32 {
		c.enqueue(errorMessage(MsgRegister, "name must be 3-32 characters"))
		return
	}
	if name == "admin" {
		c.enqueue(errorMessage(MsgRegister, "name is reserved"))
		return
	}
	if len(msg.Password) < gw.minPassword {
		c.enqueue(errorMessage(MsgRegister, "password too short"))
		return
	}

	sess, ok := gw.sessions.GetSession(c.sessionID)
	if !ok {
		c.enqueue(errorMessage(MsgRegister, "session not found"))
		return
	}

	hash, err := auth.HashPassword(msg.Password)
	if err != nil {
		gw.logger.Error("failed to hash password", zap.Error(err))
		c.enqueue(errorMessage(MsgRegister, "registration failed"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := gw.accounts.Create(ctx, name, hash); err != nil {
		if errors.Is(err, repository.ErrAccountExists) {
			c.enqueue(errorMessage(MsgRegister, "name already taken"))
		} else {
			gw.logger.Error("failed to create account",
				zap.String("name", name), zap.Error(err))
			c.enqueue(errorMessage(MsgRegister, "registration failed"))
		}
		return
	}

	sess.SetUserID(name)
	gw.logger.Info("account registered",
		zap.String("name", name),
		zap.String("session_id", c.sessionID))
	c.enqueue(ServerMessage{Type: MsgRegisterOK, Data: AuthData{Name: name}})
}

func (gw *Gateway) handleRequestReset(c *Client, msg ClientMessage) {
	name := strings.TrimSpace(msg.Name)
	if name == "" {
		c.enqueue(errorMessage(MsgRequestReset, "name is required"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	// Unknown accounts get the same acknowledgement as known ones.
	if _, err := gw.accounts.GetByName(ctx, name); err != nil {
		gw.logger.Debug("reset requested for unknown account", zap.String("name", name))
		c.enqueue(ServerMessage{Type: MsgResetOK})
		return
	}

	token, err := gw.tokens.GenerateToken(name)
	if err != nil {
		gw.logger.Error("failed to generate reset token", zap.Error(err))
		c.enqueue(ServerMessage{Type: MsgResetOK})
		return
	}

	// No mail transport here; the operator relays the token out of band.
	gw.logger.Info("password reset token issued",
		zap.String("name", name),
		zap.String("token", token))
	c.enqueue(ServerMessage{Type: MsgResetOK})
}

func (gw *Gateway) handleResetPassword(c *Client, msg ClientMessage) {
	name := strings.TrimSpace(msg.Name)
	if name == "" || msg.Token == "" {
		c.enqueue(errorMessage(MsgResetPassword, "name and token are required"))
		return
	}
	if len(msg.NewPassword) < gw.minPassword {
		c.enqueue(errorMessage(MsgResetPassword, "password too short"))
		return
	}

	if !gw.tokens.ConsumeToken(name, msg.Token) {
		c.enqueue(errorMessage(MsgResetPassword, "invalid or expired token"))
		return
	}

	hash, err := auth.HashPassword(msg.NewPassword)
	if err != nil {
		gw.logger.Error("failed to hash password", zap.Error(err))
		c.enqueue(errorMessage(MsgResetPassword, "reset failed"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := gw.accounts.UpdatePassword(ctx, name, hash); err != nil {
		gw.logger.Error("failed to update password",
			zap.String("name", name), zap.Error(err))
		c.enqueue(errorMessage(MsgResetPassword, "reset failed"))
		return
	}

	gw.logger.Info("password reset", zap.String("name", name))
	c.enqueue(ServerMessage{Type: MsgResetOK})
}

// ==================== Run operations ====================

func (gw *Gateway) handleStartRun(c *Client, msg ClientMessage) {
	if runID := c.RunID(); runID != "" {
		if view, err := gw.service.View(runID); err == nil && !view.Over {
			c.enqueue(errorMessage(MsgStartRun, "run already active"))
			return
		}
		gw.unbindRun(runID)
	}

	view, err := gw.service.StartRun(msg.Seed)
	if err != nil {
		gw.logger.Error("failed to start run", zap.Error(err))
		c.enqueue(errorMessage(MsgStartRun, err.Error()))
		return
	}

	gw.bindRun(view.RunID, c)
	if sess, ok := gw.sessions.GetSession(c.sessionID); ok {
		sess.SetRunID(view.RunID)
	}

	gw.logger.Info("run started for client",
		zap.String("run_id", view.RunID),
		zap.String("session_id", c.sessionID))
	c.enqueue(ServerMessage{Type: MsgView, Data: view})
}

func (gw *Gateway) requireRun(c *Client, op string) (string, bool) {
	runID := c.RunID()
	if runID == "" {
		c.enqueue(errorMessage(op, "no active run"))
		return "", false
	}
	return runID, true
}

func (gw *Gateway) replyView(c *Client, op string, view *game.RunView, err error) {
	if err != nil {
		c.enqueue(errorMessage(op, err.Error()))
		return
	}
	c.enqueue(ServerMessage{Type: MsgView, Data: view})
}

func (gw *Gateway) handlePlayCard(c *Client, msg ClientMessage) {
	runID, ok := gw.requireRun(c, MsgPlayCard)
	if !ok {
		return
	}
	cardID := strings.TrimSpace(msg.CardID)
	if cardID == "" {
		c.enqueue(errorMessage(MsgPlayCard, "card_id is required"))
		return
	}
	view, err := gw.service.PlayCard(runID, cardID)
	gw.replyView(c, MsgPlayCard, view, err)
}

func (gw *Gateway) handleSelectTargets(c *Client, msg ClientMessage) {
	runID, ok := gw.requireRun(c, MsgSelectTargets)
	if !ok {
		return
	}
	view, err := gw.service.SelectTargets(runID, msg.Targets)
	gw.replyView(c, MsgSelectTargets, view, err)
}

func (gw *Gateway) handleCancelTargeting(c *Client) {
	runID, ok := gw.requireRun(c, MsgCancelTargeting)
	if !ok {
		return
	}
	view, err := gw.service.CancelTargeting(runID)
	gw.replyView(c, MsgCancelTargeting, view, err)
}

func (gw *Gateway) handleEndTurn(c *Client) {
	runID, ok := gw.requireRun(c, MsgEndTurn)
	if !ok {
		return
	}
	view, err := gw.service.EndTurn(runID)
	gw.replyView(c, MsgEndTurn, view, err)
}

func (gw *Gateway) handleChoosePromotion(c *Client, msg ClientMessage) {
	runID, ok := gw.requireRun(c, MsgChoosePromotion)
	if !ok {
		return
	}
	unitID := strings.TrimSpace(msg.UnitID)
	jobID := strings.TrimSpace(msg.JobID)
	if unitID == "" || jobID == "" {
		c.enqueue(errorMessage(MsgChoosePromotion, "unit_id and job_id are required"))
		return
	}
	view, err := gw.service.ChoosePromotion(runID, unitID, jobID)
	gw.replyView(c, MsgChoosePromotion, view, err)
}

func (gw *Gateway) handleView(c *Client) {
	runID, ok := gw.requireRun(c, MsgView)
	if !ok {
		return
	}
	view, err := gw.service.View(runID)
	gw.replyView(c, MsgView, view, err)
}

func (gw *Gateway) handleAbandonRun(c *Client) {
	runID, ok := gw.requireRun(c, MsgAbandonRun)
	if !ok {
		return
	}
	if err := gw.service.AbandonRun(runID); err != nil {
		c.enqueue(errorMessage(MsgAbandonRun, err.Error()))
		return
	}
	// The RUN_ENDED notification delivers the run_over envelope.
	gw.logger.Info("run abandoned by client",
		zap.String("run_id", runID),
		zap.String("session_id", c.sessionID))
}

func (gw *Gateway) handleLeaderboard(c *Client, msg ClientMessage) {
	limit := msg.Limit
	if limit <= 0 {
		limit = 10
	}
	c.enqueue(ServerMessage{Type: MsgLeaderboard, Data: LeaderboardData{
		Top:       gw.board.Top(limit),
		Standings: gw.board.Standings(limit),
	}})
}

// ==================== Push routing ====================

func (gw *Gateway) handleNotification(n game.RunNotification) {
	client := gw.clientForRun(n.RunID)

	switch n.Type {
	case rules.EventTargetingRequired:
		if client == nil {
			return
		}
		view, err := gw.service.View(n.RunID)
		if err != nil || view.Awaiting == nil {
			return
		}
		client.enqueue(ServerMessage{Type: MsgTargetingRequired, Data: TargetingData{
			RunID:   n.RunID,
			Request: view.Awaiting,
		}})

	case rules.EventEffectExecuted:
		if client == nil {
			return
		}
		client.enqueue(ServerMessage{Type: MsgEffectExecuted, Data: runEventData(n)})

	case rules.EventActivationCompleted:
		if client == nil {
			return
		}
		client.enqueue(ServerMessage{Type: MsgActivationCompleted, Data: runEventData(n)})

	case rules.EventPromotionChoiceRequired, rules.EventTownEvent:
		if client == nil {
			return
		}
		client.enqueue(ServerMessage{Type: MsgPrompt, Data: runEventData(n)})

	case rules.EventRunEnded:
		gw.finishRun(client, n)
	}
}

// finishRun records the run on the leaderboard, archives it, pushes the
// run_over envelope and reaps the run from the service.
func (gw *Gateway) finishRun(client *Client, n game.RunNotification) {
	data := RunOverData{
		RunID:     n.RunID,
		Score:     n.Amount,
		EndReason: n.Data,
	}

	playerName := ""
	if client != nil {
		if sess, ok := gw.sessions.GetSession(client.sessionID); ok {
			playerName = sess.GetUserID()
		}
	}

	entry := leaderboard.Entry{
		RunID:      n.RunID,
		PlayerName: playerName,
		Score:      n.Amount,
		EndReason:  n.Data,
		FinishedAt: n.Timestamp,
	}

	// An abandoned run may already be gone; the notification fields carry
	// enough for the board either way.
	var seed int64
	if view, err := gw.service.View(n.RunID); err == nil {
		data.Score = view.Score
		data.View = view
		entry.Score = view.Score
		entry.Turns = view.Turn
		entry.GoldEarned = view.Stats.GoldEarned
		entry.CardsPlayed = view.Stats.CardsPlayed
		seed = view.Seed
	}

	gw.board.Record(entry)

	if gw.archive != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		record := repository.FinishedRun{
			ID:          entry.RunID,
			AccountName: entry.PlayerName,
			Seed:        seed,
			Turns:       entry.Turns,
			Score:       entry.Score,
			EndReason:   entry.EndReason,
			GoldEarned:  entry.GoldEarned,
			CardsPlayed: entry.CardsPlayed,
			FinishedAt:  entry.FinishedAt,
		}
		if err := gw.archive.InsertFinished(ctx, record); err != nil {
			gw.logger.Error("failed to archive finished run",
				zap.String("run_id", n.RunID), zap.Error(err))
		}
	}

	if client != nil {
		client.enqueue(ServerMessage{Type: MsgRunOver, Data: data})
	}

	gw.unbindRun(n.RunID)
	if err := gw.service.AbandonRun(n.RunID); err != nil {
		gw.logger.Debug("run already reaped", zap.String("run_id", n.RunID))
	}
}

// ==================== Helpers ====================

func runEventData(n game.RunNotification) RunEventData {
	return RunEventData{
		RunID:     n.RunID,
		SourceID:  n.SourceID,
		TargetID:  n.TargetID,
		Amount:    n.Amount,
		Data:      n.Data,
		Timestamp: n.Timestamp,
	}
}

func hostFromRemoteAddr(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		if remoteAddr != "" {
			return remoteAddr
		}
		return "unknown"
	}
	return host
}
