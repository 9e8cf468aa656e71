package model

// Founder represents one founder record proposed by the block extractor.
type Founder struct {
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Title       string      `json:"title,omitempty"`
	Email       string      `json:"email,omitempty"`
	LinkedInURL string      `json:"linkedin_url,omitempty"`
	Role        FounderRole `json:"role"`
	Sex         string      `json:"sex,omitempty"`
	Bio         string      `json:"bio,omitempty"`
}

// FounderRole is derived from founder count at assembly time, never from
// text content: exactly one founder is "founder", two or more are all
// "cofounder".
type FounderRole string

const (
	RoleFounder   FounderRole = "founder"
	RoleCofounder FounderRole = "cofounder"
)

// FounderParse carries everything the founder/address block extractor
// recovers besides its ParseResult: the proposed founder array, the legal
// entity name and the raw headquarters string for the address normalizer.
// The founder array is proposed once; after the first successful parse the
// user-edited array is authoritative.
type FounderParse struct {
	Founders  []Founder `json:"founders"`
	LegalName string    `json:"legal_name,omitempty"`
	HQRaw     string    `json:"hq_raw,omitempty"`
}
