package nakama

const (
	// RpcNewGame creates a fresh solo match for the caller.
	RpcNewGame = "new_game"
	// RpcResumeGame returns the caller's running match, creating one if none exists.
	RpcResumeGame = "resume_game"
	// RpcVerifyResult checks a result token issued at the end of a game.
	RpcVerifyResult = "verify_result"

	// MatchNameMineseeker is the authoritative match handler name registered with Nakama.
	MatchNameMineseeker = "mineseeker_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpReveal     int64 = 1 // CellRequest
	OpToggleFlag int64 = 2 // CellRequest
	OpNewGame    int64 = 3 // empty

	// Server -> Client events
	OpBoardSnapshot int64 = 101
	OpGameStarted   int64 = 102
	OpGameEnded     int64 = 103
	OpGameError     int64 = 104 // send privately
)

const (
	gameConfigPath = "data/game_config.json"

	// Used when mineseeker_result_secret is missing from the runtime env.
	defaultResultSecret = "test-secret"

	// Nakama accepts tick rates in 1..60.
	minTickRate = 1
	maxTickRate = 60
)
