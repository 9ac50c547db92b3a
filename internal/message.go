package internal

// ChatMessage is the envelope for every frame on the game channel, both
// directions. Content is free-form; for SCOREBOARD it carries a
// JSON-serialized []Score.
type ChatMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Game channel message types.
const (
	MsgWordToGuess      = "WORD_TO_GUESS"
	MsgMessage          = "MESSAGE"
	MsgYouGuessedIt     = "YOU_GUESSED_IT"
	MsgNextWord         = "NEXT_WORD"
	MsgCleanCanvas      = "CLEAN_CANVAS"
	MsgCleanWordToGuess = "CLEAN_WORD_TO_GUESS"
	MsgScoreboard       = "SCOREBOARD"
)

// Close reasons surfaced to clients when a session is terminated by the server.
const (
	CloseReasonInvalidToken = "Invalid token."
	CloseReasonIntegrity    = "Game integrity has been violated."
)
