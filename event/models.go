package event

import "time"

// Type enumerates the front-end actions the instrumentation reports.
type Type string

const (
	TypePageView            Type = "page_view"
	TypePropertyView        Type = "property_view"
	TypeImageView           Type = "image_view"
	TypeImageZoom           Type = "image_zoom"
	TypeDocumentDownload    Type = "document_download"
	TypeEMICalculation      Type = "emi_calculation"
	TypeROIAnalysis         Type = "roi_analysis"
	TypeCalculatorUse       Type = "calculator_use"
	TypeSearch              Type = "search"
	TypeAmenityCheck        Type = "amenity_check"
	TypeLocationSearch      Type = "location_search"
	TypeMapInteraction      Type = "map_interaction"
	TypeTestimonialView     Type = "testimonial_view"
	TypeVideoView           Type = "video_view"
	TypeContactBuilderClick Type = "contact_builder_click"
	TypeScheduleVisitClick  Type = "schedule_visit_click"
	TypeChatInitiated       Type = "chat_initiated"
)

// Signal is one observed buyer action. Rows are immutable once written;
// nothing in this service updates or deletes them.
type Signal struct {
	ID         string
	BuyerID    string
	PropertyID string
	SessionID  string
	Type       Type
	Metadata   map[string]any
	TimeOfDay  string
	OccurredAt time.Time
}

// Metadata keys the scoring rules read. Missing or malformed values are
// treated as non-matching, never as errors.
const (
	MetaTimeSpentSeconds = "time_spent_seconds"
	MetaDocumentType     = "document_type"
	MetaSearchQuery      = "search_query"
	MetaPageURL          = "page_url"
	MetaAmenity          = "amenity"
	MetaCount            = "count"
)

// Number reads a numeric metadata value, tolerating the types JSON decoding
// can produce.
func (s Signal) Number(key string) float64 {
	switch v := s.Metadata[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// String reads a string metadata value, or "" when absent.
func (s Signal) String(key string) string {
	v, _ := s.Metadata[key].(string)
	return v
}
