package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mineseeker/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

var (
	errUnauthenticated = runtime.NewError("unauthenticated", 16)
	errBadPayload      = runtime.NewError("invalid payload", 3)
	errInvalidResult   = runtime.NewError("invalid result token", 3)
	errInternal        = runtime.NewError("internal error", 13)
)

// GameMatchResponse is the payload returned by new_game and resume_game.
type GameMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

type verifyResultRequest struct {
	Token string `json:"token"`
}

// VerifyResultResponse echoes the verified claims of a result token.
type VerifyResultResponse struct {
	Valid     bool   `json:"valid"`
	UserID    string `json:"user_id"`
	Status    string `json:"status"`
	Dimension int    `json:"dimension"`
	Mines     int    `json:"mines"`
	Revealed  int    `json:"revealed"`
	Flags     int    `json:"flags"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcNewGame, rpcNewGame); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcResumeGame, rpcResumeGame); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcVerifyResult, rpcVerifyResult)
}

func rpcNewGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", errUnauthenticated
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameMineseeker, map[string]interface{}{"owner": userID})
	if err != nil {
		logger.Error("rpcNewGame [User:%s]: MatchCreate error: %v", userID, err)
		return "", errInternal
	}

	logger.Info("rpcNewGame [User:%s]: Created match %s", userID, matchID)
	return marshalResponse(GameMatchResponse{MatchID: matchID, IsNew: true})
}

// rpcResumeGame returns the caller's running match, or creates one.
func rpcResumeGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", errUnauthenticated
	}

	query := fmt.Sprintf("+label.owner:%q", userID)
	minSize := 0
	maxSize := 1
	matches, err := nk.MatchList(ctx, 1, true, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("rpcResumeGame [User:%s]: MatchList error: %v", userID, err)
		return "", errInternal
	}
	if len(matches) > 0 {
		logger.Info("rpcResumeGame [User:%s]: Found match %s", userID, matches[0].MatchId)
		return marshalResponse(GameMatchResponse{MatchID: matches[0].MatchId, IsNew: false})
	}

	return rpcNewGame(ctx, logger, db, nk, payload)
}

func rpcVerifyResult(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req verifyResultRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil || req.Token == "" {
		return "", errBadPayload
	}

	cfg := resolveConfig(ctx, logger)
	verifier := app.NewResultTokenService(cfg.ResultSecret, cfg.ResultIssuer, time.Duration(cfg.ResultTokenTTLSeconds)*time.Second)

	claims, err := verifier.Verify(req.Token)
	if err != nil {
		if errors.Is(err, app.ErrInvalidResultToken) {
			logger.Warn("rpcVerifyResult: Rejected token: %v", err)
			return "", errInvalidResult
		}
		logger.Error("rpcVerifyResult: %v", err)
		return "", errInternal
	}

	return marshalResponse(VerifyResultResponse{
		Valid:     true,
		UserID:    claims.UserID,
		Status:    string(claims.Status),
		Dimension: claims.Dimension,
		Mines:     claims.Mines,
		Revealed:  claims.Revealed,
		Flags:     claims.Flags,
	})
}

func marshalResponse(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", errInternal
	}
	return string(b), nil
}
