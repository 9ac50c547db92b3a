package internal

// User is the durable player identity. Points survive sessions and only
// ever grow; rows are created at first login and never deleted here.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Points       int    `json:"points"`
}

// ActiveSession binds a connected player to their live connection.
// Word is non-empty exactly when IsDrawing is true.
type ActiveSession struct {
	ConnID    string `json:"conn_id"`
	Username  string `json:"username"`
	Points    int    `json:"points"`
	IsDrawing bool   `json:"is_drawing"`
	Word      string `json:"-"`
}

// Word is one entry of the guessing vocabulary. IDs may be sparse.
type Word struct {
	ID   int64  `json:"id"`
	Text string `json:"word"`
}

// Score is one scoreboard row, derived from an ActiveSession on demand.
type Score struct {
	Username  string `json:"username"`
	IsDrawing bool   `json:"isDrawing"`
	Points    int    `json:"points"`
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
