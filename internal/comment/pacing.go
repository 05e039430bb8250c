package comment

import (
	"math/rand"
	"time"
)

// KeystrokeDelay returns the pause after typing the character at index.
// Every fifteenth character gets a longer beat, everything else a short one,
// approximating a human typing rhythm without stretching a short comment past
// a couple of seconds.
func KeystrokeDelay(index int, rng *rand.Rand) time.Duration {
	if index%15 == 0 {
		return jitter(rng, 50*time.Millisecond, 80*time.Millisecond)
	}
	return jitter(rng, 10*time.Millisecond, 25*time.Millisecond)
}

func jitter(rng *rand.Rand, min, max time.Duration) time.Duration {
	return min + time.Duration(rng.Int63n(int64(max-min)))
}
