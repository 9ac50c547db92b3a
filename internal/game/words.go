package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/szabala94/KalamburyPro-master/internal"
)

// maxWordAttempts bounds sampling over the sparse id range.
const maxWordAttempts = 10

// WordStore is the slice of the persistence collaborator the word source
// needs: the id range of the vocabulary and point lookups into it.
type WordStore interface {
	MinWordID(ctx context.Context) (int64, error)
	MaxWordID(ctx context.Context) (int64, error)
	FindWordByID(ctx context.Context, id int64) (internal.Word, error)
}

// WordSource draws pseudo-random words from a WordStore. Word ids may have
// gaps, so a miss is retried with a fresh sample up to maxWordAttempts
// times; the loop never runs unbounded.
type WordSource struct {
	store WordStore
	rnd   *rand.Rand
}

func NewWordSource(store WordStore) *WordSource {
	return &WordSource{store: store}
}

// Next returns a random word from the pool.
func (w *WordSource) Next(ctx context.Context) (string, error) {
	minID, err := w.store.MinWordID(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", internal.ErrWordGeneration, err)
	}
	maxID, err := w.store.MaxWordID(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", internal.ErrWordGeneration, err)
	}

	for attempt := 0; attempt < maxWordAttempts; attempt++ {
		id := minID + w.int63n(maxID-minID+1)
		word, err := w.store.FindWordByID(ctx, id)
		if err != nil {
			if errors.Is(err, internal.ErrNotFound) {
				log.Debug().Int64("id", id).Int("attempt", attempt).Msg("word id gap, next word...")
				continue
			}
			return "", fmt.Errorf("%w: %w", internal.ErrWordGeneration, err)
		}
		return word.Text, nil
	}
	return "", internal.ErrWordGeneration
}

func (w *WordSource) int63n(n int64) int64 {
	if w.rnd != nil {
		return w.rnd.Int63n(n)
	}
	return rand.Int63n(n)
}
