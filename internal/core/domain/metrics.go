package domain

// Improvement gate factors. A step commits only if readability grows by
// more than ten percent and no more than five percent of elements are lost.
const (
	ReadabilityGainFactor  = 1.1
	ElementRetentionFactor = 0.95
)

// QualityMetrics is the quality vector of one document version.
// It is meaningful only for before/after comparison within one run.
type QualityMetrics struct {
	// ReadableTextRatio is the fraction of prose tokens in readable sentences.
	ReadableTextRatio float64 `json:"readable_text_ratio" yaml:"readable_text_ratio"`

	// DetectedElementCount is the number of distinct structural elements.
	DetectedElementCount int `json:"detected_element_count" yaml:"detected_element_count"`
}

// RejectionReason names the improvement condition a step violated.
type RejectionReason string

// Rejection reasons.
const (
	ReasonInsufficientGain  RejectionReason = "insufficient_readability_gain"
	ReasonElementLoss       RejectionReason = "structural_element_loss"
	ReasonQualityUnknown    RejectionReason = "quality_unknown"
	ReasonTransformerFailed RejectionReason = "transformer_failure"
	ReasonCancelled         RejectionReason = "cancelled"
)

// Description returns a human-readable description of the reason.
func (r RejectionReason) Description() string {
	switch r {
	case ReasonInsufficientGain:
		return "readability did not improve by more than 10%"
	case ReasonElementLoss:
		return "structural element loss"
	case ReasonQualityUnknown:
		return "quality could not be measured"
	case ReasonTransformerFailed:
		return "correction could not be applied"
	case ReasonCancelled:
		return "cancelled before verification"
	default:
		return unknownDescription
	}
}

// EvaluateImprovement applies the conjunctive improvement gate and returns
// every violated condition. An empty result means the step may commit.
func EvaluateImprovement(before, after QualityMetrics) []RejectionReason {
	var reasons []RejectionReason
	if !(after.ReadableTextRatio > before.ReadableTextRatio*ReadabilityGainFactor) {
		reasons = append(reasons, ReasonInsufficientGain)
	}
	if float64(after.DetectedElementCount) < float64(before.DetectedElementCount)*ElementRetentionFactor {
		reasons = append(reasons, ReasonElementLoss)
	}
	return reasons
}
