package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/szabala94/KalamburyPro-master/internal"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// Repo is the pgx-backed persistence collaborator: durable players and the
// word vocabulary. Active sessions never touch it; they live in memory.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(ctx context.Context, connString string) (*Repo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() {
	r.pool.Close()
}

// GetUser loads a durable player by username.
func (r *Repo) GetUser(ctx context.Context, username string) (internal.User, error) {
	user := internal.User{Username: username}
	row := r.pool.QueryRow(ctx, "SELECT id, password_hash, points FROM users WHERE username = $1", username)
	if err := row.Scan(&user.ID, &user.PasswordHash, &user.Points); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return internal.User{}, fmt.Errorf("%w: user %s", internal.ErrNotFound, username)
		}
		return internal.User{}, err
	}
	return user, nil
}

// CreateUser registers a new durable player with zero points.
func (r *Repo) CreateUser(ctx context.Context, username, passwordHash string) error {
	_, err := r.pool.Exec(ctx, "INSERT INTO users(username, password_hash, points) VALUES($1, $2, 0)", username, passwordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: user %s", internal.ErrConflict, username)
		}
		return err
	}
	return nil
}

// GetPoints reads a player's durable score.
func (r *Repo) GetPoints(ctx context.Context, username string) (int, error) {
	var points int
	row := r.pool.QueryRow(ctx, "SELECT points FROM users WHERE username = $1", username)
	if err := row.Scan(&points); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: user %s", internal.ErrNotFound, username)
		}
		return 0, err
	}
	return points, nil
}

// AddPoints increments a player's durable score in one statement, so
// concurrent wins never lose updates.
func (r *Repo) AddPoints(ctx context.Context, username string, delta int) error {
	tag, err := r.pool.Exec(ctx, "UPDATE users SET points = points + $2 WHERE username = $1", username, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", internal.ErrNotFound, username)
	}
	return nil
}

// MinWordID returns the smallest word id in the vocabulary.
func (r *Repo) MinWordID(ctx context.Context) (int64, error) {
	return r.wordBound(ctx, "SELECT MIN(id) FROM words")
}

// MaxWordID returns the largest word id in the vocabulary.
func (r *Repo) MaxWordID(ctx context.Context) (int64, error) {
	return r.wordBound(ctx, "SELECT MAX(id) FROM words")
}

func (r *Repo) wordBound(ctx context.Context, query string) (int64, error) {
	var id *int64
	if err := r.pool.QueryRow(ctx, query).Scan(&id); err != nil {
		return 0, err
	}
	if id == nil {
		return 0, fmt.Errorf("%w: word table is empty", internal.ErrNotFound)
	}
	return *id, nil
}

// FindWordByID resolves one word id; ids may be sparse, so absence is a
// routine ErrNotFound.
func (r *Repo) FindWordByID(ctx context.Context, id int64) (internal.Word, error) {
	word := internal.Word{ID: id}
	row := r.pool.QueryRow(ctx, "SELECT word FROM words WHERE id = $1", id)
	if err := row.Scan(&word.Text); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return internal.Word{}, fmt.Errorf("%w: word id %d", internal.ErrNotFound, id)
		}
		return internal.Word{}, err
	}
	return word, nil
}
