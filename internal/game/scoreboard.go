package game

import "github.com/szabala94/KalamburyPro-master/internal"

// projectScoreboard derives scoreboard rows from the active session set.
// Pure projection, nothing is stored.
func projectScoreboard(sessions []internal.ActiveSession) []internal.Score {
	scores := make([]internal.Score, 0, len(sessions))
	for _, s := range sessions {
		scores = append(scores, internal.Score{
			Username:  s.Username,
			IsDrawing: s.IsDrawing,
			Points:    s.Points,
		})
	}
	return scores
}
