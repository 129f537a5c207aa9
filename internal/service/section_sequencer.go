package service

import (
	"github.com/Tapananshu17/HCI/internal/model"
)

// SectionSequencer owns the fixed order sections are taken in. It is pure
// ordering logic; section rows themselves are created through the
// TestSectionRepository's get-or-create, and only ever in ascending order
// (the lifecycle never asks for section k+1 before section k is completed).
type SectionSequencer struct {
	order []model.SectionKind
}

func NewSectionSequencer() *SectionSequencer {
	return NewSectionSequencerWithOrder(model.SectionOrder)
}

// NewSectionSequencerWithOrder exists so the section count stays a
// configuration value rather than a structural assumption. The order must
// contain at least one kind.
func NewSectionSequencerWithOrder(order []model.SectionKind) *SectionSequencer {
	if len(order) == 0 {
		panic("section sequencer requires at least one section kind")
	}
	copied := make([]model.SectionKind, len(order))
	copy(copied, order)
	return &SectionSequencer{order: copied}
}

func (s *SectionSequencer) First() model.SectionKind {
	return s.order[0]
}

// After returns the kind that follows the given one, or ok=false when the
// given kind is the last. Unknown kinds are a caller error and also return
// ok=false.
func (s *SectionSequencer) After(kind model.SectionKind) (model.SectionKind, bool) {
	for i, k := range s.order {
		if k == kind {
			if i+1 < len(s.order) {
				return s.order[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

// Index returns the zero-based position of a kind, or -1 if it is not part
// of the sequence.
func (s *SectionSequencer) Index(kind model.SectionKind) int {
	for i, k := range s.order {
		if k == kind {
			return i
		}
	}
	return -1
}

func (s *SectionSequencer) Contains(kind model.SectionKind) bool {
	return s.Index(kind) >= 0
}

func (s *SectionSequencer) Count() int {
	return len(s.order)
}

// Predecessors returns the kinds that must be completed before the given
// one may be created or submitted.
func (s *SectionSequencer) Predecessors(kind model.SectionKind) []model.SectionKind {
	idx := s.Index(kind)
	if idx <= 0 {
		return nil
	}
	return s.order[:idx]
}
