package nakama

import (
	"context"
	"database/sql"
	"time"

	"mineseeker/internal/app"
	"mineseeker/internal/config"
	"mineseeker/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// MatchState holds the authoritative runtime state for one solo game.
type MatchState struct {
	OwnerUserID    string                      `json:"owner_user_id"`    // The only user allowed to play; empty until first join
	Tick           int64                       `json:"tick"`             // Current tick of the match
	EmptySinceTick int64                       `json:"empty_since_tick"` // Tick the match became empty, -1 while occupied
	Config         config.GameConfig           `json:"-"`                // Board and token settings resolved at init
	Presences      map[string]runtime.Presence `json:"-"`                // Map UserId -> Presence for targeted messaging
	App            *app.Service                `json:"-"`                // Gesture to engine boundary
	Session        *domain.GameSession         `json:"-"`                // Current game
	Results        *app.ResultTokenService     `json:"-"`                // Signs receipts for finished games
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// resolveConfig reads the config file once and applies runtime env overrides.
func resolveConfig(ctx context.Context, logger runtime.Logger) config.GameConfig {
	if err := config.LoadGameConfig(gameConfigPath); err != nil {
		logger.Warn("Could not load game config, using defaults: %v", err)
	}
	cfg := config.GetGameConfig()
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		cfg = cfg.WithEnv(env)
	}
	if cfg.ResultSecret == "" {
		cfg.ResultSecret = defaultResultSecret
		logger.Warn("Result token secret missing from env, using test default.")
	}
	return cfg
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	cfg := resolveConfig(ctx, logger)
	tickRate := cfg.TickRate
	if tickRate < minTickRate || tickRate > maxTickRate {
		logger.Warn("MatchInit: Tick rate %d out of range, using %d.", tickRate, config.Defaults().TickRate)
		tickRate = config.Defaults().TickRate
		cfg.TickRate = tickRate
	}

	state := &MatchState{
		EmptySinceTick: -1,
		Config:         cfg,
		Presences:      make(map[string]runtime.Presence),
		App:            app.NewService(nil),
		Results:        app.NewResultTokenService(cfg.ResultSecret, cfg.ResultIssuer, time.Duration(cfg.ResultTokenTTLSeconds)*time.Second),
	}
	if owner, ok := params["owner"].(string); ok {
		state.OwnerUserID = owner
	}

	session, _, err := state.App.NewGame(cfg.Dimension, cfg.MineCount)
	if err != nil {
		logger.Error("MatchInit: Failed to start game with %dx%d/%d: %v", cfg.Dimension, cfg.Dimension, cfg.MineCount, err)
		return nil, 0, ""
	}
	state.Session = session

	label, err := buildLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Solo game: only the owner may join, and may rejoin any time.
	if matchState.OwnerUserID != "" && matchState.OwnerUserID != presence.GetUserId() {
		return state, false, "match_full"
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	var joined []runtime.Presence
	for _, p := range presences {
		if matchState.OwnerUserID == "" {
			matchState.OwnerUserID = p.GetUserId()
			logger.Debug("MatchJoin: Owner set to %s.", p.GetUserId())
		}
		if p.GetUserId() != matchState.OwnerUserID {
			logger.Warn("MatchJoin: User %s joined a match owned by %s, ignoring.", p.GetUserId(), matchState.OwnerUserID)
			continue
		}
		matchState.Presences[p.GetUserId()] = p
		joined = append(joined, p)
	}
	if len(matchState.Presences) > 0 {
		matchState.EmptySinceTick = -1
	}

	mh.updateLabel(matchState, dispatcher, logger)

	// Bring (re)joining clients up to date with the current board.
	if len(joined) > 0 && matchState.Session != nil {
		mh.sendSnapshot(matchState, dispatcher, logger, OpBoardSnapshot, nil, joined)
	}

	return matchState
}

// MatchLeave is called when one or more presences leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		logger.Debug("MatchLeave: User %s left.", p.GetUserId())
	}

	if len(matchState.Presences) == 0 && matchState.EmptySinceTick < 0 {
		matchState.EmptySinceTick = tick
		logger.Debug("MatchLeave: Match empty at tick %d, waiting for the owner to resume.", tick)
	}

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		if msg.GetUserId() != matchState.OwnerUserID {
			logger.Warn("MatchLoop: Ignoring opcode %d from non-owner %s.", msg.GetOpCode(), msg.GetUserId())
			continue
		}
		switch msg.GetOpCode() {
		case OpReveal:
			mh.handleMove(ctx, matchState, dispatcher, logger, msg, "handleReveal", matchState.App.PrimaryActivate)
		case OpToggleFlag:
			mh.handleMove(ctx, matchState, dispatcher, logger, msg, "handleToggleFlag", matchState.App.SecondaryActivate)
		case OpNewGame:
			mh.handleNewGame(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if len(matchState.Presences) == 0 {
		if matchState.EmptySinceTick < 0 {
			matchState.EmptySinceTick = tick
		}
		if tick-matchState.EmptySinceTick >= matchState.Config.TicksFor(matchState.Config.EmptyTimeoutSeconds) {
			logger.Info("MatchLoop: Terminating match left empty since tick %d.", matchState.EmptySinceTick)
			return nil
		}
	}

	return matchState
}

type moveFunc func(session *domain.GameSession, row, col int) ([]app.Event, error)

func (mh *matchHandler) handleMove(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData, name string, move moveFunc) {
	senderID := msg.GetUserId()

	coord, err := decodeCellRequest(msg.GetData())
	if err != nil {
		logger.Warn("%s: Invalid CellRequest from %s: %v", name, senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "invalid cell request")
		return
	}

	events, err := move(state.Session, coord.Row, coord.Col)
	if err != nil {
		logger.Warn("%s: User %s failed to play (%d,%d): %v", name, senderID, coord.Row, coord.Col, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	if len(events) == 0 {
		logger.Debug("%s: Move (%d,%d) by %s ignored.", name, coord.Row, coord.Col, senderID)
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleNewGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	session, events, err := state.App.NewGame(state.Config.Dimension, state.Config.MineCount)
	if err != nil {
		logger.Error("handleNewGame: Failed to start game: %v", err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 500, err.Error())
		return
	}

	state.Session = session
	mh.updateLabel(state, dispatcher, logger)

	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	logger.Info("handleNewGame: User %s started a new %dx%d game.", msg.GetUserId(), state.Config.Dimension, state.Config.Dimension)
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var opCode int64
	var view domain.View
	var extra map[string]interface{}

	switch ev.Kind {
	case app.EventGameStarted:
		opCode = OpGameStarted
		view = ev.Payload.(app.GameStartedPayload).View
	case app.EventBoardUpdated:
		opCode = OpBoardSnapshot
		view = ev.Payload.(app.BoardUpdatedPayload).View
	case app.EventGameEnded:
		opCode = OpGameEnded
		p := ev.Payload.(app.GameEndedPayload)
		view = p.View
		extra = map[string]interface{}{"outcome": string(p.Status)}

		token, err := state.Results.Issue(state.OwnerUserID, state.Session)
		if err != nil {
			logger.Error("Failed to issue result token for %s: %v", state.OwnerUserID, err)
		} else {
			extra["result_token"] = token
		}
		logger.Info("Event: game_ended (owner=%s, status=%s, match=%v)", state.OwnerUserID, p.Status, ctx.Value(runtime.RUNTIME_CTX_MATCH_ID))
		mh.updateLabel(state, dispatcher, logger)
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		if len(recipients) == 0 {
			return
		}
	}

	mh.sendView(dispatcher, logger, opCode, view, extra, recipients)
}

func (mh *matchHandler) sendSnapshot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, opCode int64, extra map[string]interface{}, recipients []runtime.Presence) {
	mh.sendView(dispatcher, logger, opCode, state.Session.Snapshot(), extra, recipients)
}

func (mh *matchHandler) sendView(dispatcher runtime.MatchDispatcher, logger runtime.Logger, opCode int64, view domain.View, extra map[string]interface{}, recipients []runtime.Presence) {
	bytes, err := encodeView(view, extra)
	if err != nil {
		logger.Error("Failed to marshal snapshot for opcode %d: %v", opCode, err)
		return
	}
	if err := dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true); err != nil {
		logger.Error("Failed to broadcast opcode %d: %v", opCode, err)
	}
}

// sendError sends a game error to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := encodeError(code, message)
	if err != nil {
		logger.Error("Failed to marshal game error: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true)
}

// buildLabel renders the match label used by resume_game queries.
func buildLabel(state *MatchState) (string, error) {
	open := 0
	if state.OwnerUserID == "" {
		open = 1
	}
	status := ""
	if state.Session != nil {
		status = string(state.Session.Status())
	}

	label, err := structpb.NewStruct(map[string]interface{}{
		"open":      open,
		"owner":     state.OwnerUserID,
		"status":    status,
		"dimension": state.Config.Dimension,
		"mines":     state.Config.MineCount,
	})
	if err != nil {
		return "", err
	}
	labelBytes, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(labelBytes), nil
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := buildLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

// MatchSignal answers "snapshot" with the current board as JSON; other signals are ignored.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok || data != "snapshot" || matchState.Session == nil {
		return state, ""
	}

	s, err := viewToStruct(matchState.Session.Snapshot(), nil)
	if err != nil {
		logger.Error("MatchSignal: Failed to build snapshot: %v", err)
		return state, ""
	}
	out, err := protojson.Marshal(s)
	if err != nil {
		logger.Error("MatchSignal: Failed to marshal snapshot: %v", err)
		return state, ""
	}
	return state, string(out)
}
