package dealsearch

// Deal is one historical opportunity document as stored in the search index.
// The JSON names mirror the index schema; Notes keeps its original
// capitalization from the source data.
type Deal struct {
	OpportunityID      string    `json:"opportunity_id"`
	Content            string    `json:"content,omitempty"`
	DealStage          string    `json:"deal_stage"`
	Product            string    `json:"product"`
	AccountSector      string    `json:"account_sector"`
	SalesRep           string    `json:"sales_rep"`
	AccountRegion      string    `json:"account_region"`
	SalesPrice         float64   `json:"sales_price"`
	RevenueFromDeal    float64   `json:"revenue_from_deal"`
	SalesCycleDuration float64   `json:"sales_cycle_duration"`
	DealValueRatio     float64   `json:"deal_value_ratio"`
	Notes              string    `json:"Notes"`
	TextVector         []float32 `json:"text_vector,omitempty"`
}

// selectFields is the projection requested from the index on every search.
const selectFields = "opportunity_id,content,deal_stage,product,account_sector,sales_rep,account_region,sales_price,revenue_from_deal,sales_cycle_duration,deal_value_ratio,Notes"
