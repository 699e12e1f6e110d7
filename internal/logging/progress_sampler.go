package logging

import "strings"

// ProgressSampler suppresses repetitive progress logs while preserving signal
// when the playback segment or percentage bucket changes.
type ProgressSampler struct {
	bucketSize  float64
	lastSegment string
	lastBucket  int
}

// NewProgressSampler constructs a sampler that emits when the percent crosses
// bucket boundaries (default 5%) or when the segment changes.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 5
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether a progress event should be logged. Percent can be
// negative to indicate "unknown". A new segment (for example a decoder
// restarted by a seek) resets the bucket so progress is logged again even when
// the position moved backwards.
func (s *ProgressSampler) ShouldLog(percent float64, segment string) bool {
	if s == nil {
		return true
	}
	segment = strings.TrimSpace(segment)
	emit := false
	if segment != "" && segment != s.lastSegment {
		s.lastSegment = segment
		s.lastBucket = -1
		emit = true
	}
	if percent >= 0 {
		bucket := int(min(percent, 100) / s.bucketSize)
		if bucket > s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}

// Reset clears the sampler state.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastSegment = ""
	s.lastBucket = -1
}
