package packbuilder

import (
	"fmt"
	"math/rand"
)

var ErrInsufficientCards = fmt.Errorf("not enough cards in pool")

// WeightFn rates a pool card for balancing purposes.
type WeightFn func(id string) float64

// Build deals packCount packs of packSize cards from the pool without
// replacement. Cards are referenced by pool index and the deal is fully
// determined by the seed.
func Build(pool []string, packSize, packCount int, seed int64) ([][]int, error) {
	if packSize <= 0 || packCount <= 0 {
		return nil, fmt.Errorf("invalid pack shape %dx%d", packCount, packSize)
	}

	need := packSize * packCount
	if len(pool) < need {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientCards, len(pool), need)
	}

	rng := rand.New(rand.NewSource(seed))
	order := rng.Perm(len(pool))

	packs := make([][]int, packCount)
	for i := range packs {
		packs[i] = append([]int(nil), order[i*packSize:(i+1)*packSize]...)
	}

	return packs, nil
}

// Result carries a balanced deal plus the strongest pack's total weight,
// reported back to the creator so lopsided pools are visible.
type Result struct {
	Packs        [][]int
	MaxBotWeight float64
}

// BuildBalanced repeatedly deals until no single pack's summed weight
// exceeds the pool average by more than the balance band, keeping the
// best deal seen if every attempt misses. Reshuffles stay deterministic
// because each attempt reseeds from the base seed and attempt number.
func BuildBalanced(pool []string, packSize, packCount int, seed int64, maxAttempts int, weight WeightFn) (Result, error) {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var total float64
	for _, id := range pool {
		total += weight(id)
	}
	mean := total / float64(len(pool))
	target := mean * float64(packSize) * balanceBand

	var best Result
	for attempt := 0; attempt < maxAttempts; attempt++ {
		packs, err := Build(pool, packSize, packCount, seed+int64(attempt))
		if err != nil {
			return Result{}, err
		}

		maxWeight := 0.0
		for _, pack := range packs {
			w := 0.0
			for _, idx := range pack {
				w += weight(pool[idx])
			}
			if w > maxWeight {
				maxWeight = w
			}
		}

		if attempt == 0 || maxWeight < best.MaxBotWeight {
			best = Result{Packs: packs, MaxBotWeight: maxWeight}
		}
		if maxWeight <= target {
			break
		}
	}

	return best, nil
}

// balanceBand is the tolerated ratio between the heaviest pack and a
// mean-weight pack.
const balanceBand = 1.2
