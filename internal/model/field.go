package model

// FieldKey identifies one form field the extractors know how to populate.
// The vocabularies are closed sets known at compile time; extractors never
// invent new keys.
type FieldKey string

// Deal vocabulary: fields of the investment-details wizard step.
const (
	FieldName               FieldKey = "name"
	FieldCompanyURL         FieldKey = "company_url"
	FieldCompanySlug        FieldKey = "company_slug"
	FieldInvestmentAmount   FieldKey = "investment_amount"
	FieldRoundSize          FieldKey = "round_size_usd"
	FieldInstrument         FieldKey = "instrument"
	FieldConversionCap      FieldKey = "conversion_cap_usd"
	FieldDiscountPercent    FieldKey = "discount_percent"
	FieldPostMoneyValuation FieldKey = "post_money_valuation"
	FieldStageAtInvestment  FieldKey = "stage_at_investment"
	FieldInvestmentDate     FieldKey = "investment_date"
	FieldHasProRataRights   FieldKey = "has_pro_rata_rights"
	FieldCountryOfIncorp    FieldKey = "country_of_incorp"
	FieldIncorporationType  FieldKey = "incorporation_type"
	FieldReasonForInvesting FieldKey = "reason_for_investing"
	FieldCoInvestors        FieldKey = "co_investors"
	FieldFounderName        FieldKey = "founder_name"
	FieldDescriptionRaw     FieldKey = "description_raw"
)

// Founders-and-address vocabulary: fields of the company-details wizard
// step. Disjoint from the deal vocabulary. Latitude/longitude are listed
// because the step owns them; the text extractor always fails them and
// leaves them to the address normalizer.
const (
	FieldLegalName      FieldKey = "legal_name"
	FieldHQAddressLine1 FieldKey = "hq_address_line_1"
	FieldHQAddressLine2 FieldKey = "hq_address_line_2"
	FieldHQCity         FieldKey = "hq_city"
	FieldHQState        FieldKey = "hq_state"
	FieldHQZipCode      FieldKey = "hq_zip_code"
	FieldHQCountry      FieldKey = "hq_country"
	FieldHQLatitude     FieldKey = "hq_latitude"
	FieldHQLongitude    FieldKey = "hq_longitude"
)

// DealVocabulary returns the deal-step field keys in canonical order.
func DealVocabulary() []FieldKey {
	return []FieldKey{
		FieldName,
		FieldCompanyURL,
		FieldCompanySlug,
		FieldInvestmentAmount,
		FieldRoundSize,
		FieldInstrument,
		FieldConversionCap,
		FieldDiscountPercent,
		FieldPostMoneyValuation,
		FieldStageAtInvestment,
		FieldInvestmentDate,
		FieldHasProRataRights,
		FieldCountryOfIncorp,
		FieldIncorporationType,
		FieldReasonForInvesting,
		FieldCoInvestors,
		FieldFounderName,
		FieldDescriptionRaw,
	}
}

// FounderVocabulary returns the company-details field keys in canonical order.
func FounderVocabulary() []FieldKey {
	return []FieldKey{
		FieldLegalName,
		FieldHQAddressLine1,
		FieldHQAddressLine2,
		FieldHQCity,
		FieldHQState,
		FieldHQZipCode,
		FieldHQCountry,
		FieldHQLatitude,
		FieldHQLongitude,
	}
}

// Instrument is the closed enum of investment instruments. Extraction maps
// free text onto it by substring containment in a fixed priority order and
// never defaults: an unrecognized phrase fails the field instead.
type Instrument string

const (
	InstrumentSAFEPost        Instrument = "safe_post"
	InstrumentSAFEPre         Instrument = "safe_pre"
	InstrumentConvertibleNote Instrument = "convertible_note"
	InstrumentEquity          Instrument = "equity"
)

// Stage is the closed enum of funding stages.
type Stage string

const (
	StagePreSeed Stage = "pre_seed"
	StageSeed    Stage = "seed"
	StageSeriesA Stage = "series_a"
	StageSeriesB Stage = "series_b"
	StageSeriesC Stage = "series_c"
	StageBridge  Stage = "bridge"
	StageGrowth  Stage = "growth"
)

// IncorporationType is the closed enum of legal entity types.
type IncorporationType string

const (
	IncorpCCorp IncorporationType = "c_corp"
	IncorpSCorp IncorporationType = "s_corp"
	IncorpLLC   IncorporationType = "llc"
	IncorpPBC   IncorporationType = "pbc"
	IncorpLtd   IncorporationType = "ltd"
)

// FieldStatus is the UI-facing validation state of a URL-bearing field.
// It is never persisted.
type FieldStatus string

const (
	StatusIdle       FieldStatus = "idle"       // No check dispatched since mount or last clear
	StatusValidating FieldStatus = "validating" // Check in flight
	StatusValid      FieldStatus = "valid"      // Latest check succeeded
	StatusInvalid    FieldStatus = "invalid"    // Latest check failed
)

// ParseResult is the output of one extractor over its vocabulary.
// SuccessfullyParsed and FailedToParse partition the vocabulary exactly;
// ExtractedData holds a value for precisely the successful keys.
type ParseResult struct {
	ExtractedData      map[FieldKey]interface{} `json:"extracted_data"`
	SuccessfullyParsed []FieldKey               `json:"successfully_parsed"`
	FailedToParse      []FieldKey               `json:"failed_to_parse"`
}

// NewParseResult returns an empty result ready for Succeed/Fail calls.
func NewParseResult() ParseResult {
	return ParseResult{
		ExtractedData: make(map[FieldKey]interface{}),
	}
}

// Succeed records a parsed value for key.
func (r *ParseResult) Succeed(key FieldKey, value interface{}) {
	r.ExtractedData[key] = value
	r.SuccessfullyParsed = append(r.SuccessfullyParsed, key)
}

// Fail records that key could not be parsed.
func (r *ParseResult) Fail(key FieldKey) {
	r.FailedToParse = append(r.FailedToParse, key)
}

// Parsed reports whether key was successfully parsed.
func (r *ParseResult) Parsed(key FieldKey) bool {
	_, ok := r.ExtractedData[key]
	return ok
}

// CombinedResult is the aggregator's output: the single boundary the rest
// of the system consumes. Data is the union of every extractor's values;
// NeedsManualInput is the union of every extractor's failures.
type CombinedResult struct {
	Data             map[FieldKey]interface{} `json:"data"`
	NeedsManualInput []FieldKey               `json:"needs_manual_input"`
}
