package persona

import (
	"context"
	"errors"
	"testing"
	"time"

	"tharaga/event"
)

type fakeEventSource struct {
	signals   []event.Signal
	err       error
	lastSince time.Time
}

func (f *fakeEventSource) ListForBuyerSince(_ context.Context, _ string, since time.Time) ([]event.Signal, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastSince = since
	out := make([]event.Signal, 0, len(f.signals))
	for _, s := range f.signals {
		if !s.OccurredAt.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeProfileStore struct {
	upserted []Profile
	err      error
}

func (f *fakeProfileStore) Upsert(_ context.Context, profile Profile) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, profile)
	return nil
}

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestClassifier(events *fakeEventSource, profiles *fakeProfileStore) *Service {
	return NewService(events, profiles).WithClock(func() time.Time { return testNow })
}

func recentSignal(typ event.Type, metadata map[string]any) event.Signal {
	return event.Signal{Type: typ, Metadata: metadata, OccurredAt: testNow.Add(-time.Hour)}
}

func TestClassify_MissingBuyer(t *testing.T) {
	svc := newTestClassifier(&fakeEventSource{}, &fakeProfileStore{})

	if _, err := svc.Classify(context.Background(), ""); !errors.Is(err, ErrMissingBuyer) {
		t.Fatalf("expected ErrMissingBuyer, got %v", err)
	}
}

func TestClassify_NoHistoryDefaults(t *testing.T) {
	profiles := &fakeProfileStore{}
	svc := newTestClassifier(&fakeEventSource{}, profiles)

	result, err := svc.Classify(context.Background(), "b1")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	if result.Primary != TypeLifestyleDriven {
		t.Fatalf("expected default lifestyle_driven, got %s", result.Primary)
	}
	if result.Confidence != 0 {
		t.Fatalf("expected zero confidence, got %v", result.Confidence)
	}
	if len(profiles.upserted) != 0 {
		t.Fatal("no profile row may be written without history")
	}
}

func TestClassify_ROIDominant(t *testing.T) {
	events := &fakeEventSource{signals: []event.Signal{
		recentSignal(event.TypeDocumentDownload, map[string]any{event.MetaDocumentType: "spec_sheet"}),
		recentSignal(event.TypeROIAnalysis, nil),
		recentSignal(event.TypeEMICalculation, nil),
		recentSignal(event.TypeEMICalculation, nil),
	}}
	profiles := &fakeProfileStore{}
	svc := newTestClassifier(events, profiles)

	result, err := svc.Classify(context.Background(), "b1")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	if result.Primary != TypeROIDriven {
		t.Fatalf("expected roi_driven, got %s (%+v)", result.Primary, result.Scores)
	}
	if result.Scores.ROI <= result.Scores.Scarcity || result.Scores.ROI <= result.Scores.Lifestyle {
		t.Fatalf("roi score must dominate, got %+v", result.Scores)
	}
	if result.Confidence <= 0 || result.Confidence > 100 {
		t.Fatalf("confidence out of range: %v", result.Confidence)
	}
	if len(result.TopIndicators) == 0 || len(result.TopIndicators) > 3 {
		t.Fatalf("expected 1-3 top indicators, got %v", result.TopIndicators)
	}

	if len(profiles.upserted) != 1 {
		t.Fatalf("expected one profile upsert, got %d", len(profiles.upserted))
	}
	profile := profiles.upserted[0]
	if profile.Primary != TypeROIDriven || profile.EventsAnalyzed != 4 {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if !profile.ClassifiedAt.Equal(testNow) {
		t.Fatalf("expected classification timestamp %v, got %v", testNow, profile.ClassifiedAt)
	}
}

func TestClassify_ScarcityKeywords(t *testing.T) {
	events := &fakeEventSource{signals: []event.Signal{
		recentSignal(event.TypeSearch, map[string]any{event.MetaSearchQuery: "ultra-luxury penthouse marina"}),
		recentSignal(event.TypeAmenityCheck, map[string]any{event.MetaAmenity: "Clubhouse and concierge"}),
	}}
	svc := newTestClassifier(events, &fakeProfileStore{})

	result, err := svc.Classify(context.Background(), "b1")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if result.Primary != TypeScarcityDriven {
		t.Fatalf("expected scarcity_driven, got %s (%+v)", result.Primary, result.Scores)
	}
}

func TestClassify_SecondaryRequiresFifty(t *testing.T) {
	// Lifestyle scores 35 via the community video; below the 50-point bar for
	// a secondary type.
	events := &fakeEventSource{signals: []event.Signal{
		recentSignal(event.TypeROIAnalysis, nil),
		recentSignal(event.TypeDocumentDownload, map[string]any{event.MetaDocumentType: "floor_plan"}),
		recentSignal(event.TypeVideoView, nil),
	}}
	svc := newTestClassifier(events, &fakeProfileStore{})

	result, err := svc.Classify(context.Background(), "b1")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if result.Primary != TypeROIDriven {
		t.Fatalf("expected roi primary, got %s (%+v)", result.Primary, result.Scores)
	}
	if result.Secondary != nil {
		t.Fatalf("expected no secondary below 50 points, got %s", *result.Secondary)
	}
}

func TestClassify_FetchesFullWindowWithoutCap(t *testing.T) {
	// A very active buyer: hundreds of in-window events, none of which may be
	// dropped from the analysis.
	signals := make([]event.Signal, 0, 500)
	for i := 0; i < 500; i++ {
		signals = append(signals, event.Signal{
			Type:       event.TypeROIAnalysis,
			OccurredAt: testNow.Add(-time.Duration(i) * time.Hour),
		})
	}
	events := &fakeEventSource{signals: signals}
	profiles := &fakeProfileStore{}
	svc := newTestClassifier(events, profiles)

	result, err := svc.Classify(context.Background(), "b1")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	wantSince := testNow.Add(-30 * 24 * time.Hour)
	if !events.lastSince.Equal(wantSince) {
		t.Fatalf("expected fetch since %v, got %v", wantSince, events.lastSince)
	}
	if result.Primary != TypeROIDriven {
		t.Fatalf("expected roi_driven, got %s", result.Primary)
	}
	if len(profiles.upserted) != 1 {
		t.Fatalf("expected one upsert, got %d", len(profiles.upserted))
	}
	if got := profiles.upserted[0].EventsAnalyzed; got != 500 {
		t.Fatalf("every in-window event must be analyzed, got %d of 500", got)
	}
}

func TestClassify_OldEventsIgnored(t *testing.T) {
	events := &fakeEventSource{signals: []event.Signal{
		{Type: event.TypeROIAnalysis, OccurredAt: testNow.Add(-40 * 24 * time.Hour)},
	}}
	profiles := &fakeProfileStore{}
	svc := newTestClassifier(events, profiles)

	result, err := svc.Classify(context.Background(), "b1")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if result.Primary != TypeLifestyleDriven || len(profiles.upserted) != 0 {
		t.Fatalf("events outside the window must not classify: %+v", result)
	}
}

func TestClassify_FetchErrorSurfaces(t *testing.T) {
	events := &fakeEventSource{err: errors.New("db down")}
	svc := newTestClassifier(events, &fakeProfileStore{})

	if _, err := svc.Classify(context.Background(), "b1"); err == nil {
		t.Fatal("expected fetch error to surface")
	}
}
