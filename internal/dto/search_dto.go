package dto

// Search modes. Callers wanting resilience against vector-provider
// outages must pick keyword explicitly; there is no silent fallback.
const (
	SearchModeSemantic = "semantic"
	SearchModeHybrid   = "hybrid"
	SearchModeKeyword  = "keyword"
)

type SearchRequest struct {
	Query     string   `json:"query" validate:"required"`
	Mode      string   `json:"mode"`
	Threshold *float64 `json:"threshold"`
	Count     int      `json:"count"`
	Limit     int      `json:"limit"`
	Offset    int      `json:"offset"`
}

// SearchResult is a note plus a similarity score. Similarity is only
// present for semantic/hybrid results.
type SearchResult struct {
	NoteResponse
	Similarity *float64 `json:"similarity,omitempty"`
}

type SearchResponse struct {
	Mode    string          `json:"mode"`
	Results []*SearchResult `json:"results"`
	// Total is only populated for keyword search, which paginates.
	Total *int64 `json:"total,omitempty"`
}
