package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// IssueKind identifies the class of a structural defect.
// The set is closed; every switch over it must handle all kinds.
type IssueKind string

// Issue kinds.
const (
	// IssueRotation is a page rendered at the wrong orientation.
	IssueRotation IssueKind = "rotation"

	// IssueOrdering is a page sequence that differs from reading order.
	IssueOrdering IssueKind = "ordering"

	// IssueDuplicate is a page that repeats an earlier page.
	IssueDuplicate IssueKind = "duplicate"

	// IssueLowQuality is a page whose recognition confidence needs review.
	// Low quality issues are reported, never corrected.
	IssueLowQuality IssueKind = "low_quality"
)

// AllIssueKinds returns every issue kind in plan phase order.
func AllIssueKinds() []IssueKind {
	return []IssueKind{IssueRotation, IssueDuplicate, IssueOrdering, IssueLowQuality}
}

// IsValid returns true if the kind is recognised.
func (k IssueKind) IsValid() bool {
	switch k {
	case IssueRotation, IssueOrdering, IssueDuplicate, IssueLowQuality:
		return true
	default:
		return false
	}
}

// Correctable returns true if issues of this kind may enter a plan.
func (k IssueKind) Correctable() bool {
	return k == IssueRotation || k == IssueOrdering || k == IssueDuplicate
}

// Phase returns the plan position of the kind. Rotation fixes come first
// and reordering last, because page order signals depend on correctly
// oriented, non-duplicated pages.
func (k IssueKind) Phase() int {
	switch k {
	case IssueRotation:
		return 0
	case IssueDuplicate:
		return 1
	case IssueOrdering:
		return 2
	default:
		return 3
	}
}

// String returns the string representation.
func (k IssueKind) String() string {
	return string(k)
}

// RotationIssue is the payload of a rotation issue.
type RotationIssue struct {
	// Page is the original index of the misrotated page.
	Page int `json:"page" yaml:"page"`

	// Angle is the detected clockwise rotation of the content.
	// The correction rotates the page back by this angle.
	Angle int `json:"angle" yaml:"angle"`
}

// OrderingIssue is the payload of an ordering issue.
type OrderingIssue struct {
	// ExpectedSequence lists original indices in reading order.
	ExpectedSequence []int `json:"expected_sequence" yaml:"expected_sequence"`
}

// DuplicateIssue is the payload of a duplicate issue.
type DuplicateIssue struct {
	// Keep is the original index of the canonical page.
	Keep int `json:"keep" yaml:"keep"`

	// Remove is the original index of the repeated page.
	Remove int `json:"remove" yaml:"remove"`

	// Similarity is the text similarity in [0,1].
	Similarity float64 `json:"similarity" yaml:"similarity"`
}

// LowQualityIssue is the payload of a low quality issue.
type LowQualityIssue struct {
	// Page is the original index of the page.
	Page int `json:"page" yaml:"page"`

	// Score is the recognition confidence in [0,1].
	Score float64 `json:"score" yaml:"score"`
}

// Issue is a detected structural defect. Exactly one payload matching
// Kind is set. Page references are original indices, so an issue stays
// valid after earlier corrections move or delete pages.
type Issue struct {
	Kind       IssueKind `json:"kind" yaml:"kind"`
	Confidence float64   `json:"confidence" yaml:"confidence"`
	Detector   string    `json:"detector" yaml:"detector"`

	Rotation   *RotationIssue   `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Ordering   *OrderingIssue   `json:"ordering,omitempty" yaml:"ordering,omitempty"`
	Duplicate  *DuplicateIssue  `json:"duplicate,omitempty" yaml:"duplicate,omitempty"`
	LowQuality *LowQualityIssue `json:"low_quality,omitempty" yaml:"low_quality,omitempty"`
}

// NewRotationIssue creates a rotation issue for an original page.
func NewRotationIssue(page, angle int, confidence float64) Issue {
	return Issue{
		Kind:       IssueRotation,
		Confidence: clamp01(confidence),
		Rotation:   &RotationIssue{Page: page, Angle: NormalizeAngle(angle)},
	}
}

// NewOrderingIssue creates an ordering issue.
func NewOrderingIssue(sequence []int, confidence float64) Issue {
	seq := make([]int, len(sequence))
	copy(seq, sequence)
	return Issue{
		Kind:       IssueOrdering,
		Confidence: clamp01(confidence),
		Ordering:   &OrderingIssue{ExpectedSequence: seq},
	}
}

// NewDuplicateIssue creates a duplicate issue. Similarity doubles as confidence.
func NewDuplicateIssue(keep, remove int, similarity float64) Issue {
	similarity = clamp01(similarity)
	return Issue{
		Kind:       IssueDuplicate,
		Confidence: similarity,
		Duplicate:  &DuplicateIssue{Keep: keep, Remove: remove, Similarity: similarity},
	}
}

// NewLowQualityIssue creates a low quality issue for an original page.
func NewLowQualityIssue(page int, score float64) Issue {
	score = clamp01(score)
	return Issue{
		Kind:       IssueLowQuality,
		Confidence: 1 - score,
		LowQuality: &LowQualityIssue{Page: page, Score: score},
	}
}

// WithDetector returns a copy of the issue attributed to a detector.
func (i Issue) WithDetector(name string) Issue {
	i.Detector = name
	return i
}

// Validate checks that the payload matches the kind.
func (i Issue) Validate() error {
	if i.Confidence < 0 || i.Confidence > 1 {
		return fmt.Errorf("issue confidence %.3f: %w", i.Confidence, ErrInvalidInput)
	}
	var ok bool
	switch i.Kind {
	case IssueRotation:
		ok = i.Rotation != nil && i.Rotation.Page >= 0
	case IssueOrdering:
		ok = i.Ordering != nil && len(i.Ordering.ExpectedSequence) > 0
	case IssueDuplicate:
		ok = i.Duplicate != nil && i.Duplicate.Keep != i.Duplicate.Remove
	case IssueLowQuality:
		ok = i.LowQuality != nil && i.LowQuality.Page >= 0
	default:
		return fmt.Errorf("issue kind %q: %w", i.Kind, ErrUnsupportedType)
	}
	if !ok {
		return fmt.Errorf("malformed %s issue: %w", i.Kind, ErrInvalidInput)
	}
	return nil
}

// Pages returns the original page indices the issue targets.
func (i Issue) Pages() []int {
	switch i.Kind {
	case IssueRotation:
		if i.Rotation != nil {
			return []int{i.Rotation.Page}
		}
	case IssueOrdering:
		if i.Ordering != nil {
			out := make([]int, len(i.Ordering.ExpectedSequence))
			copy(out, i.Ordering.ExpectedSequence)
			return out
		}
	case IssueDuplicate:
		if i.Duplicate != nil {
			return []int{i.Duplicate.Keep, i.Duplicate.Remove}
		}
	case IssueLowQuality:
		if i.LowQuality != nil {
			return []int{i.LowQuality.Page}
		}
	}
	return nil
}

// TargetPage returns the original page the correction acts on.
// Ordering issues act on the whole document and return -1.
func (i Issue) TargetPage() int {
	switch i.Kind {
	case IssueRotation:
		if i.Rotation != nil {
			return i.Rotation.Page
		}
	case IssueDuplicate:
		if i.Duplicate != nil {
			return i.Duplicate.Remove
		}
	case IssueLowQuality:
		if i.LowQuality != nil {
			return i.LowQuality.Page
		}
	case IssueOrdering:
	}
	return -1
}

// Key returns a stable identity used to avoid retrying the same correction.
func (i Issue) Key() string {
	switch i.Kind {
	case IssueRotation:
		if i.Rotation != nil {
			return fmt.Sprintf("rotation:%d:%d", i.Rotation.Page, i.Rotation.Angle)
		}
	case IssueOrdering:
		if i.Ordering != nil {
			parts := make([]string, len(i.Ordering.ExpectedSequence))
			for k, p := range i.Ordering.ExpectedSequence {
				parts[k] = strconv.Itoa(p)
			}
			return "ordering:" + strings.Join(parts, ",")
		}
	case IssueDuplicate:
		if i.Duplicate != nil {
			return fmt.Sprintf("duplicate:%d:%d", i.Duplicate.Keep, i.Duplicate.Remove)
		}
	case IssueLowQuality:
		if i.LowQuality != nil {
			return fmt.Sprintf("low_quality:%d", i.LowQuality.Page)
		}
	}
	return string(i.Kind)
}

// String returns a human-readable description. Pages are shown 1-based.
func (i Issue) String() string {
	switch i.Kind {
	case IssueRotation:
		if i.Rotation != nil {
			return fmt.Sprintf("page %d rotated %d°", i.Rotation.Page+1, i.Rotation.Angle)
		}
	case IssueOrdering:
		if i.Ordering != nil {
			parts := make([]string, len(i.Ordering.ExpectedSequence))
			for k, p := range i.Ordering.ExpectedSequence {
				parts[k] = strconv.Itoa(p + 1)
			}
			return "pages out of order, expected " + strings.Join(parts, ",")
		}
	case IssueDuplicate:
		if i.Duplicate != nil {
			return fmt.Sprintf("page %d duplicates page %d (%.0f%%)",
				i.Duplicate.Remove+1, i.Duplicate.Keep+1, i.Duplicate.Similarity*100)
		}
	case IssueLowQuality:
		if i.LowQuality != nil {
			return fmt.Sprintf("page %d low recognition quality (%.2f)", i.LowQuality.Page+1, i.LowQuality.Score)
		}
	}
	return string(i.Kind)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
