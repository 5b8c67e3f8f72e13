package models

// FilterSpec is the wire form of a call log filter. Every field travels as a
// string: timestamps are decimal epoch milliseconds and list fields hold a JSON
// array literal such as `["INCOMING","MISSED"]`. A nil field means "not set".
type FilterSpec struct {
	MinTimestamp *string `json:"minTimestamp,omitempty" example:"1700000000000"`
	MaxTimestamp *string `json:"maxTimestamp,omitempty" example:"-1"`
	Types        *string `json:"types,omitempty" example:"[\"INCOMING\",\"MISSED\"]"`
	PhoneNumbers *string `json:"phoneNumbers,omitempty" example:"[\"+15551234\"]"`
	// Expression is an optional CEL boolean evaluated per call.
	Expression *string `json:"expression,omitempty" example:"duration > 60"`
}

func StringPtr(s string) *string {
	return &s
}

// CallLogQuery is the body of a call log query. A nil Limit means the
// configured default.
type CallLogQuery struct {
	Limit  *int        `json:"limit,omitempty" example:"50"`
	Filter *FilterSpec `json:"filter,omitempty"`
}

type CallLogResponse struct {
	Count   int                 `json:"count"`
	Records []map[string]string `json:"records"`
}
