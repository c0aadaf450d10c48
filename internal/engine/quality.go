package engine

import "github.com/specledger/specledger/internal/model"

// Scorer derives a quality score for version content. Externalized so
// scoring policy can change without touching version creation.
type Scorer interface {
	// Score classifies content of the given length for a document type.
	Score(t model.DocType, length int) model.QualityScore
	// MinLengthForApproval is the length floor a version must meet to
	// enter review or approved status.
	MinLengthForApproval(t model.DocType) int
}

// lengthThresholds holds the per-type boundaries for the length-based
// scorer. Content at or above OK scores ok, at or above Min scores
// needs_review, below Min scores low_quality.
type lengthThresholds struct {
	Min int
	OK  int
}

// defaultThresholds reflect that upper tiers carry broad narrative
// content while leaves can be short and precise.
var defaultThresholds = map[model.DocType]lengthThresholds{
	model.TypeEpic:        {Min: 200, OK: 600},
	model.TypeComponent:   {Min: 150, OK: 500},
	model.TypeFeature:     {Min: 100, OK: 400},
	model.TypeRequirement: {Min: 50, OK: 300},
}

// LengthScorer scores content by length against per-type thresholds.
type LengthScorer struct {
	thresholds map[model.DocType]lengthThresholds
}

// NewLengthScorer returns a scorer with the default thresholds.
func NewLengthScorer() *LengthScorer {
	return &LengthScorer{thresholds: defaultThresholds}
}

// Score implements Scorer.
func (s *LengthScorer) Score(t model.DocType, length int) model.QualityScore {
	th, ok := s.thresholds[t]
	if !ok {
		th = defaultThresholds[model.TypeRequirement]
	}
	switch {
	case length >= th.OK:
		return model.QualityOK
	case length >= th.Min:
		return model.QualityNeedsReview
	default:
		return model.QualityLow
	}
}

// MinLengthForApproval implements Scorer.
func (s *LengthScorer) MinLengthForApproval(t model.DocType) int {
	th, ok := s.thresholds[t]
	if !ok {
		th = defaultThresholds[model.TypeRequirement]
	}
	return th.Min
}
