package srs

import (
	"errors"
	"fmt"
)

// ErrInvalidWeights is returned when a weight vector has an entry
// outside its allowed bounds.
var ErrInvalidWeights = errors.New("memory model weights out of bounds")

// DefaultWeights is the default 17-element weight vector for the memory
// model, tuned on large shared review corpora.
var DefaultWeights = [17]float64{
	0.4, 0.6, 2.4, 5.8, // W[0..3]   initial stability S₀(rating)
	4.93, 0.94, // W[4..5]   initial difficulty D₀(rating)
	0.86, 0.01, // W[6..7]   difficulty delta and mean reversion
	1.49, 0.14, 0.94, // W[8..10]  recall stability growth
	2.18, 0.05, 0.34, 1.26, // W[11..14] lapse stability
	0.29, 2.61, // W[15..16] hard penalty, easy bonus
}

// lowerBounds and upperBounds define the allowed range per weight.
var lowerBounds = [17]float64{
	0.1, 0.1, 0.1, 0.1,
	1.0, 0.1,
	0.1, 0.0,
	0.0, 0.0, 0.01,
	0.5, 0.01, 0.01, 0.01,
	0.0, 1.0,
}

var upperBounds = [17]float64{
	100.0, 100.0, 100.0, 100.0,
	10.0, 5.0,
	5.0, 0.75,
	4.5, 0.8, 3.5,
	5.0, 0.25, 0.9, 4.0,
	1.0, 6.0,
}

// ValidateWeights checks that every weight is within its bounds.
func ValidateWeights(w [17]float64) error {
	for i := range w {
		if w[i] < lowerBounds[i] || w[i] > upperBounds[i] {
			return fmt.Errorf("%w: W[%d] = %f, bounds [%f, %f]",
				ErrInvalidWeights, i, w[i], lowerBounds[i], upperBounds[i])
		}
	}
	return nil
}
