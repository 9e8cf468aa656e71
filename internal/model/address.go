package model

// Address is a normalized postal address plus the metadata describing how
// it was produced. Method and NeedsReview are as much a part of the
// contract as the coordinates: the UI ranks trust from them without
// re-deriving anything.
type Address struct {
	Line1       string          `json:"line1"`
	Line2       string          `json:"line2,omitempty"`
	City        string          `json:"city,omitempty"`
	State       string          `json:"state,omitempty"`
	PostalCode  string          `json:"postal_code,omitempty"`
	Country     string          `json:"country,omitempty"` // ISO-3166 alpha-2
	Lat         float64         `json:"lat,omitempty"`
	Lon         float64         `json:"lon,omitempty"`
	Relevance   float64         `json:"relevance"` // 0..1; provider's own for mapbox, fixed band otherwise
	Method      NormalizeMethod `json:"method"`
	NeedsReview bool            `json:"needs_review"`
}

// NormalizeMethod records which strategy produced an Address.
type NormalizeMethod string

const (
	MethodMapbox   NormalizeMethod = "mapbox"   // Geocoding provider lookup
	MethodRegex    NormalizeMethod = "regex"    // Structural pattern match
	MethodFallback NormalizeMethod = "fallback" // Raw passthrough, lowest trust
)
