package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 5},
		{"default bucket size for negative", -1, 5},
		{"custom bucket size", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSamplerNilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "segment") {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset()
}

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(10)
	if !s.ShouldLog(0, "1") {
		t.Error("first call should log")
	}
	if s.ShouldLog(5, "1") {
		t.Error("same bucket should not log")
	}
	if !s.ShouldLog(12, "1") {
		t.Error("next bucket should log")
	}
	if s.ShouldLog(150, "1") && s.ShouldLog(150, "1") {
		t.Error("values past 100 should clamp to the final bucket")
	}
}

func TestProgressSamplerSegmentChangeResets(t *testing.T) {
	s := NewProgressSampler(10)
	s.ShouldLog(55, "1")
	if s.ShouldLog(20, "1") {
		t.Error("backwards progress in the same segment should not log")
	}
	if !s.ShouldLog(20, "2") {
		t.Error("a new segment should log")
	}
	if s.lastSegment != "2" {
		t.Errorf("lastSegment = %q, want 2", s.lastSegment)
	}
	s.Reset()
	if s.lastSegment != "" || s.lastBucket != -1 {
		t.Errorf("Reset left state %q/%d", s.lastSegment, s.lastBucket)
	}
}
