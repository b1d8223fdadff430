package readiness

import "testing"

func TestUrgencyFor_StepBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  Urgency
	}{
		{0, UrgencyLow},
		{3, UrgencyLow},
		{4, UrgencyMedium},
		{5, UrgencyMedium},
		{6, UrgencyHigh},
		{7, UrgencyHigh},
		{8, UrgencyCritical},
		{10, UrgencyCritical},
	}

	for _, tc := range cases {
		if got := UrgencyFor(tc.score); got != tc.want {
			t.Errorf("UrgencyFor(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestUrgencyFor_NonDecreasing(t *testing.T) {
	rank := map[Urgency]int{
		UrgencyLow:      0,
		UrgencyMedium:   1,
		UrgencyHigh:     2,
		UrgencyCritical: 3,
	}

	prev := UrgencyFor(0)
	for score := 1; score <= 12; score++ {
		cur := UrgencyFor(score)
		if rank[cur] < rank[prev] {
			t.Fatalf("urgency decreased from %s to %s at score %d", prev, cur, score)
		}
		prev = cur
	}
}

func TestActionFor(t *testing.T) {
	cases := []struct {
		urgency Urgency
		want    string
	}{
		{UrgencyCritical, ActionImmediatePhoneCall},
		{UrgencyHigh, ActionSendPersonalizedWhatsApp},
		{UrgencyMedium, ActionTriggerEmailSequence},
		{UrgencyLow, ActionContinueNurturing},
	}

	for _, tc := range cases {
		if got := ActionFor(tc.urgency); got != tc.want {
			t.Errorf("ActionFor(%s) = %s, want %s", tc.urgency, got, tc.want)
		}
	}
}
