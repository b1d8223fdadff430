package persona

import (
	"strings"

	"tharaga/event"
)

type matchKind int

const (
	kindSearchKeyword matchKind = iota
	kindTimeOn
	kindEventCount
	kindCalculator
	kindDocument
	kindAmenity
	kindMedia
)

// Indicator is one weighted behavioral cue for an archetype.
type Indicator struct {
	Name      string
	Kind      matchKind
	Events    []event.Type
	Keywords  []string
	Amenities []string
	DocTypes  []string
	Threshold int
	Points    int
}

// Matches reports whether the indicator fires for the given event history.
// An indicator contributes its points at most once per classification run.
func (in Indicator) Matches(signals []event.Signal) bool {
	switch in.Kind {
	case kindSearchKeyword:
		return anyEvent(signals, func(s event.Signal) bool {
			q := strings.ToLower(s.String(event.MetaSearchQuery))
			if q == "" {
				return false
			}
			for _, kw := range in.Keywords {
				if strings.Contains(q, kw) {
					return true
				}
			}
			return false
		})
	case kindTimeOn:
		return anyEvent(signals, func(s event.Signal) bool {
			return in.hasEvent(s.Type) && s.Number(event.MetaTimeSpentSeconds) >= float64(in.Threshold)
		})
	case kindEventCount:
		threshold := in.Threshold
		if threshold <= 0 {
			threshold = 1
		}
		n := 0
		for _, s := range signals {
			if in.hasEvent(s.Type) {
				n++
			}
		}
		return n >= threshold
	case kindCalculator:
		return anyEvent(signals, func(s event.Signal) bool {
			return s.Type == event.TypeEMICalculation || s.Type == event.TypeROIAnalysis
		})
	case kindDocument:
		return anyEvent(signals, func(s event.Signal) bool {
			if s.Type != event.TypeDocumentDownload {
				return false
			}
			doc := s.String(event.MetaDocumentType)
			for _, dt := range in.DocTypes {
				if doc == dt {
					return true
				}
			}
			return false
		})
	case kindAmenity:
		return anyEvent(signals, func(s event.Signal) bool {
			if s.Type != event.TypeAmenityCheck {
				return false
			}
			amenity := strings.ToLower(s.String(event.MetaAmenity))
			for _, a := range in.Amenities {
				if strings.Contains(amenity, a) {
					return true
				}
			}
			return false
		})
	case kindMedia:
		return anyEvent(signals, func(s event.Signal) bool {
			return s.Type == event.TypeTestimonialView || s.Type == event.TypeVideoView
		})
	default:
		return false
	}
}

func (in Indicator) hasEvent(t event.Type) bool {
	for _, et := range in.Events {
		if et == t {
			return true
		}
	}
	return false
}

func anyEvent(signals []event.Signal, match func(event.Signal) bool) bool {
	for _, s := range signals {
		if match(s) {
			return true
		}
	}
	return false
}

// Indicators returns the weighted cue table for one archetype.
func Indicators(t Type) []Indicator {
	switch t {
	case TypeScarcityDriven:
		return scarcityIndicators
	case TypeROIDriven:
		return roiIndicators
	case TypeLifestyleDriven:
		return lifestyleIndicators
	default:
		return nil
	}
}

var scarcityIndicators = []Indicator{
	{Name: "search_keyword_luxury", Kind: kindSearchKeyword, Keywords: []string{"luxury", "premium", "exclusive", "penthouse", "high-end", "vip", "ultra-luxury"}, Points: 15},
	{Name: "search_keyword_brand", Kind: kindSearchKeyword, Keywords: []string{"branded", "celebrity", "gated community", "prestigious"}, Points: 12},
	{Name: "time_on_amenities_page_90sec", Kind: kindTimeOn, Events: []event.Type{event.TypePageView, event.TypePropertyView}, Threshold: 90, Points: 20},
	{Name: "views_virtual_tour_multiple", Kind: kindEventCount, Events: []event.Type{event.TypeVideoView}, Threshold: 2, Points: 25},
	{Name: "views_lifestyle_gallery_multiple", Kind: kindEventCount, Events: []event.Type{event.TypeImageView, event.TypeImageZoom}, Threshold: 3, Points: 18},
	{Name: "checks_social_status_amenity", Kind: kindAmenity, Amenities: []string{"clubhouse", "concierge", "valet", "butler", "golf"}, Points: 15},
	{Name: "engagement_scarcity_messaging", Kind: kindSearchKeyword, Keywords: []string{"only 2 left", "last units", "closing soon"}, Points: 25},
}

var roiIndicators = []Indicator{
	{Name: "downloads_spec_sheet", Kind: kindDocument, DocTypes: []string{"spec_sheet"}, Points: 25},
	{Name: "downloads_floor_plan", Kind: kindDocument, DocTypes: []string{"floor_plan"}, Points: 25},
	{Name: "uses_roi_calculator", Kind: kindCalculator, Points: 40},
	{Name: "time_on_pricing_breakdown_5min", Kind: kindTimeOn, Events: []event.Type{event.TypePropertyView, event.TypePageView}, Threshold: 300, Points: 30},
	{Name: "checks_price_per_sqft_repeatedly", Kind: kindEventCount, Events: []event.Type{event.TypeROIAnalysis}, Threshold: 3, Points: 20},
	{Name: "downloads_financial_docs", Kind: kindDocument, DocTypes: []string{"payment_schedule", "rera_docs", "completion_certificate"}, Points: 25},
	{Name: "uses_emi_calculator_multiple", Kind: kindEventCount, Events: []event.Type{event.TypeEMICalculation}, Threshold: 2, Points: 22},
}

var lifestyleIndicators = []Indicator{
	{Name: "time_on_testimonials_2min", Kind: kindTimeOn, Events: []event.Type{event.TypeTestimonialView}, Threshold: 120, Points: 30},
	{Name: "watches_community_video_tour", Kind: kindMedia, Points: 35},
	{Name: "views_schools_nearby_multiple", Kind: kindSearchKeyword, Keywords: []string{"school", "education"}, Points: 25},
	{Name: "checks_playground_park_amenities", Kind: kindAmenity, Amenities: []string{"playground", "park", "garden"}, Points: 25},
	{Name: "searches_safety_security", Kind: kindSearchKeyword, Keywords: []string{"safety", "security", "gated"}, Points: 18},
	{Name: "views_neighborhood_walkthrough", Kind: kindEventCount, Events: []event.Type{event.TypeMapInteraction, event.TypeLocationSearch}, Threshold: 2, Points: 28},
}
