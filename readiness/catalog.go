package readiness

import (
	"regexp"

	"tharaga/event"
)

// Definition is a named behavioral rule. Predicates are pure and must treat
// missing or malformed metadata as non-matching.
type Definition struct {
	Name        string
	Description string
	Weight      int
	Match       func(signals []event.Signal) bool
}

var (
	amenityQueryRe  = regexp.MustCompile(`(?i)mall|restaurant|park|gym`)
	schoolQueryRe   = regexp.MustCompile(`(?i)school|hospital|medical|education`)
	commuteQueryRe  = regexp.MustCompile(`(?i)commute|traffic|distance|metro`)
	communityPageRe = regexp.MustCompile(`(?i)community|lifestyle|residents`)
)

// Catalog returns the fixed rule set in declaration order. The slice is
// rebuilt per call so callers can substitute or trim definitions in tests
// without affecting each other.
func Catalog() []Definition {
	return []Definition{
		{
			Name:        "time_spent_3min_plus",
			Description: "Spent 3+ minutes on a single property page",
			Weight:      1,
			Match: func(signals []event.Signal) bool {
				return anySignal(signals, func(s event.Signal) bool {
					return s.Type == event.TypePropertyView && s.Number(event.MetaTimeSpentSeconds) >= 180
				})
			},
		},
		{
			Name:        "visited_pricing_calculator",
			Description: "Used pricing/EMI calculator",
			Weight:      1,
			Match: func(signals []event.Signal) bool {
				return anySignal(signals, func(s event.Signal) bool {
					return s.Type == event.TypeEMICalculation || s.Type == event.TypeROIAnalysis
				})
			},
		},
		{
			Name:        "viewed_3plus_images",
			Description: "Viewed 3+ property images/floor plans",
			Weight:      1,
			Match: func(signals []event.Signal) bool {
				return countSignals(signals, func(s event.Signal) bool {
					return s.Type == event.TypeImageView || s.Type == event.TypeImageZoom
				}) >= 3
			},
		},
		{
			Name:        "downloaded_spec_sheet",
			Description: "Downloaded specification sheet/brochure",
			Weight:      1,
			Match: func(signals []event.Signal) bool {
				return anySignal(signals, func(s event.Signal) bool {
					if s.Type != event.TypeDocumentDownload {
						return false
					}
					doc := s.String(event.MetaDocumentType)
					return doc == "spec_sheet" || doc == "brochure"
				})
			},
		},
		{
			Name:        "viewed_testimonials",
			Description: "Viewed customer testimonials/reviews",
			Weight:      1,
			Match: func(signals []event.Signal) bool {
				return anySignal(signals, func(s event.Signal) bool {
					return s.Type == event.TypeTestimonialView || s.Type == event.TypeVideoView
				})
			},
		},
		{
			Name:        "searched_nearby_amenities",
			Description: "Searched for nearby amenities (malls, restaurants, parks)",
			Weight:      1,
			Match: func(signals []event.Signal) bool {
				return anySignal(signals, func(s event.Signal) bool {
					return s.Type == event.TypeAmenityCheck || amenityQueryRe.MatchString(s.String(event.MetaSearchQuery))
				})
			},
		},
		{
			Name:        "searched_schools_hospitals",
			Description: "Searched for schools/hospitals nearby",
			Weight:      1,
			Match: func(signals []event.Signal) bool {
				return anySignal(signals, func(s event.Signal) bool {
					return schoolQueryRe.MatchString(s.String(event.MetaSearchQuery))
				})
			},
		},
		{
			Name:        "checked_traffic_commute",
			Description: "Checked traffic/commute information",
			Weight:      1,
			Match: func(signals []event.Signal) bool {
				return anySignal(signals, func(s event.Signal) bool {
					return s.Type == event.TypeLocationSearch ||
						s.Type == event.TypeMapInteraction ||
						commuteQueryRe.MatchString(s.String(event.MetaSearchQuery))
				})
			},
		},
		{
			Name:        "visited_community_page_2plus",
			Description: "Visited community/lifestyle page 2+ times",
			Weight:      1,
			Match: func(signals []event.Signal) bool {
				return countSignals(signals, func(s event.Signal) bool {
					return communityPageRe.MatchString(s.String(event.MetaPageURL))
				}) >= 2
			},
		},
		{
			Name:        "accessed_contact_booking",
			Description: "Clicked on contact/booking options",
			Weight:      1,
			Match: func(signals []event.Signal) bool {
				return anySignal(signals, func(s event.Signal) bool {
					return s.Type == event.TypeContactBuilderClick ||
						s.Type == event.TypeScheduleVisitClick ||
						s.Type == event.TypeChatInitiated
				})
			},
		},
	}
}

func anySignal(signals []event.Signal, match func(event.Signal) bool) bool {
	for _, s := range signals {
		if match(s) {
			return true
		}
	}
	return false
}

func countSignals(signals []event.Signal, match func(event.Signal) bool) int {
	n := 0
	for _, s := range signals {
		if match(s) {
			n++
		}
	}
	return n
}
