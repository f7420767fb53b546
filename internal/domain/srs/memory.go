package srs

import (
	"math"

	"github.com/phrazzld/rote/internal/domain"
)

// model holds the weight vector and scheduling bounds the pure memory
// functions operate on. Target retention and maximum interval are
// configuration inputs, never constants of the algorithm.
type model struct {
	w               [17]float64
	targetRetention float64
	maximumInterval int
}

// retrievability computes R(t, S) = (1 + t/(9·S))^-1, the modeled
// probability of recall after t elapsed days at stability S.
func (m *model) retrievability(elapsedDays, stability float64) float64 {
	return 1 / (1 + elapsedDays/(9*stability))
}

// initStability returns the first stability S₀(rating) = W[rating-1].
func (m *model) initStability(rating domain.Rating) float64 {
	return clampS(m.w[rating-1])
}

// initDifficulty returns the first difficulty
// D₀(rating) = W[4] - (rating-3)·W[5], clamped to [1, 10].
func (m *model) initDifficulty(rating domain.Rating) float64 {
	return clampD(m.w[4] - (float64(rating)-3)*m.w[5])
}

// nextDifficulty applies the rating-dependent delta and then reverts
// toward the baseline difficulty D₀(Good) with weight W[7], so repeated
// Easy ratings gradually lower perceived difficulty and vice versa.
// ΔD = -W[6]·(rating-3)
// D'' = W[7]·D₀(Good) + (1-W[7])·(D + ΔD), clamped to [1, 10]
func (m *model) nextDifficulty(difficulty float64, rating domain.Rating) float64 {
	next := difficulty - m.w[6]*(float64(rating)-3)
	reverted := m.w[7]*m.initDifficulty(domain.RatingGood) + (1-m.w[7])*next
	return clampD(reverted)
}

// nextStability dispatches to the recall or lapse update.
func (m *model) nextStability(difficulty, stability, retrievability float64, rating domain.Rating) float64 {
	if rating == domain.RatingAgain {
		return m.forgetStability(difficulty, stability, retrievability)
	}
	return m.recallStability(difficulty, stability, retrievability, rating)
}

// recallStability computes stability after a successful recall (Hard/Good/Easy).
// S' = S·(1 + e^W[8]·(11-D)·S^-W[9]·(e^((1-R)·W[10]) - 1)·hardPenalty·easyBonus)
func (m *model) recallStability(difficulty, stability, retrievability float64, rating domain.Rating) float64 {
	hardPenalty := 1.0
	if rating == domain.RatingHard {
		hardPenalty = m.w[15]
	}
	easyBonus := 1.0
	if rating == domain.RatingEasy {
		easyBonus = m.w[16]
	}
	growth := math.Exp(m.w[8]) *
		(11 - difficulty) *
		math.Pow(stability, -m.w[9]) *
		(math.Exp((1-retrievability)*m.w[10]) - 1) *
		hardPenalty * easyBonus
	return clampS(stability * (1 + growth))
}

// forgetStability computes stability after a failed recall (Again).
// S' = W[11]·D^-W[12]·((S+1)^W[13] - 1)·e^((1-R)·W[14]), never above S.
func (m *model) forgetStability(difficulty, stability, retrievability float64) float64 {
	next := m.w[11] *
		math.Pow(difficulty, -m.w[12]) *
		(math.Pow(stability+1, m.w[13]) - 1) *
		math.Exp((1-retrievability)*m.w[14])
	return clampS(math.Min(next, stability))
}

// nextInterval computes the next review interval in days.
// I(S) = round(9·S·(1/targetRetention - 1)), clamped to [1, maximumInterval].
func (m *model) nextInterval(stability float64) int {
	ivl := 9 * stability * (1/m.targetRetention - 1)
	days := int(math.Round(ivl))
	if days < 1 {
		days = 1
	}
	if days > m.maximumInterval {
		days = m.maximumInterval
	}
	return days
}

// clampS clamps stability to a minimum of 0.1.
func clampS(s float64) float64 {
	return math.Max(s, 0.1)
}

// clampD clamps difficulty to [1, 10].
func clampD(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}
