package tournament

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/tourney/core/model"
	"github.com/YuminosukeSato/tourney/metrics"
)

// EvaluationResult is one candidate's row in the tournament table. A failed
// candidate keeps zero scores, a nil Unit and the failure in Err.
type EvaluationResult struct {
	Name            string
	AccuracyPercent float64
	CorrectCount    float64
	Unit            model.Classifier
	Err             error

	FoldAccuracies []float64
	MeanAccuracy   float64
	StdAccuracy    float64
	Confusion      *metrics.ConfusionMatrix
	Duration       time.Duration
}

// Failed reports whether the candidate could not be evaluated.
func (r EvaluationResult) Failed() bool {
	return r.Err != nil
}

func (r EvaluationResult) String() string {
	return fmt.Sprintf("%s | Correct: %d | Acc: %.2f%%", r.Name, int(r.CorrectCount), r.AccuracyPercent)
}

// State is the outcome of one tournament run. Each run replaces the
// previous State wholesale.
type State struct {
	RunID     uuid.UUID
	Results   []EvaluationResult
	Best      *EvaluationResult
	StartedAt time.Time
	Duration  time.Duration
}

// SelectBest returns the index of the successful result with the strictly
// greatest correct count, the earliest one on ties. It returns false when
// no candidate succeeded.
func SelectBest(results []EvaluationResult) (int, bool) {
	best := -1
	for i, r := range results {
		if r.Failed() || r.Unit == nil {
			continue
		}
		if best < 0 || r.CorrectCount > results[best].CorrectCount {
			best = i
		}
	}
	return best, best >= 0
}
