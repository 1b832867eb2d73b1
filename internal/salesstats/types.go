package salesstats

// HighConfidenceSampleSize is the sample count above which a simulation is
// labeled high confidence.
const HighConfidenceSampleSize = 200

// SignificanceThreshold is the minimum frequency a qualitative category must
// exceed to appear in the output.
const SignificanceThreshold = 0.1

const (
	DefaultTopAlternatives = 3
	DefaultTopReps         = 5
	TopImprovements        = 3
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
)

type SourceType string

const (
	SourceQuantitative SourceType = "Quantitative simulation"
	SourceQualitative  SourceType = "Qualitative insight"
)

// WinRateRecord is one categorical segment's performance against baseline.
// Lift is win_rate / overall_win_rate; lift > 1.0 means above baseline.
type WinRateRecord struct {
	WinRate    float64 `json:"win_rate"`
	Lift       float64 `json:"lift"`
	SampleSize int     `json:"sample_size,omitempty"`
}

// RepRecord is a named sales-rep record; reps always carry sample sizes.
type RepRecord struct {
	Name       string  `json:"name"`
	WinRate    float64 `json:"win_rate"`
	Lift       float64 `json:"lift"`
	SampleSize int     `json:"sample_size"`
}

// DimensionTable holds per-key win rates and lifts for one categorical
// dimension (product, sector, region, rep), as loaded from the statistics
// input. SampleSize is only populated for the sales_rep dimension.
type DimensionTable struct {
	WinRate    map[string]float64 `json:"win_rate"`
	Lift       map[string]float64 `json:"lift"`
	SampleSize map[string]int     `json:"sample_size,omitempty"`
}

type CycleDays struct {
	Won  float64 `json:"won"`
	Lost float64 `json:"lost"`
}

// QuantStats mirrors the precomputed quantitative statistics JSON.
type QuantStats struct {
	OverallWinRate        float64            `json:"overall_win_rate"`
	AvgCycleDays          CycleDays          `json:"avg_cycle_days"`
	Correlations          map[string]float64 `json:"correlations"`
	Product               DimensionTable     `json:"product"`
	AccountSector         DimensionTable     `json:"account_sector"`
	AccountRegion         DimensionTable     `json:"account_region"`
	SalesRep              DimensionTable     `json:"sales_rep"`
	ProductSectorWinRates map[string]float64 `json:"product_sector_win_rates"`
	AvgRevenueByProduct   map[string]float64 `json:"avg_revenue_by_product"`
}

// QualitativeCategory is one text-derived pattern with its share of
// won (win drivers) or lost (loss risks) deals.
type QualitativeCategory struct {
	Frequency float64  `json:"frequency"`
	Count     int      `json:"count"`
	Examples  []string `json:"examples,omitempty"`
}

type QualTotals struct {
	TotalWon   int `json:"total_won"`
	TotalLost  int `json:"total_lost"`
	TotalNotes int `json:"total_notes"`
}

// QualSegment is the sector- or product-specific slice of the qualitative
// statistics.
type QualSegment struct {
	WinDrivers map[string]QualitativeCategory `json:"win_drivers"`
	LossRisks  map[string]QualitativeCategory `json:"loss_risks"`
}

// QualStats mirrors the precomputed qualitative statistics JSON.
type QualStats struct {
	WinDrivers map[string]QualitativeCategory `json:"win_drivers"`
	LossRisks  map[string]QualitativeCategory `json:"loss_risks"`
	Overall    QualTotals                     `json:"overall"`
	Segmented  map[string]QualSegment         `json:"segmented"`
}

// OpportunityAttributes are the structured fields extracted from a free-text
// opportunity description. Nil means the field was not mentioned.
type OpportunityAttributes struct {
	Product         *string  `json:"product"`
	Sector          *string  `json:"sector"`
	Region          *string  `json:"region"`
	SalesPrice      *float64 `json:"sales_price"`
	ExpectedRevenue *float64 `json:"expected_revenue"`
	CurrentRep      *string  `json:"current_rep"`
}

// Empty reports whether no attribute at all was extracted.
func (a OpportunityAttributes) Empty() bool {
	return a.Product == nil && a.Sector == nil && a.Region == nil &&
		a.SalesPrice == nil && a.ExpectedRevenue == nil && a.CurrentRep == nil
}

// Simulation is one "what-if" scenario quantifying the estimated win-rate
// impact of a single change.
type Simulation struct {
	Description      string     `json:"description"`
	EstimatedWinRate float64    `json:"estimated_win_rate"`
	UpliftPercent    float64    `json:"uplift_percent"`
	RevenueEstimate  *float64   `json:"revenue_estimate,omitempty"`
	Confidence       Confidence `json:"confidence,omitempty"`
	FromQual         bool       `json:"from_qual,omitempty"`
}

// QualitativeEntry is a qualitative category re-expressed as an ordered list
// element. Rank is the slice position; the downstream prompt consumes these
// positionally.
type QualitativeEntry struct {
	Category  string   `json:"category"`
	Frequency float64  `json:"frequency"`
	Count     int      `json:"count"`
	Examples  []string `json:"examples,omitempty"`
}

// QualitativeInsights carries the selected win drivers and loss risks, each
// sorted by frequency descending.
type QualitativeInsights struct {
	WinDrivers []QualitativeEntry `json:"win_drivers"`
	LossRisks  []QualitativeEntry `json:"loss_risks"`
}

// WinProbabilityImprovement decorates one of the top simulations with its
// rank and provenance for the recommendation prompt.
type WinProbabilityImprovement struct {
	Rank           int        `json:"rank"`
	Recommendation string     `json:"recommendation"`
	UpliftPercent  float64    `json:"uplift_percent"`
	Confidence     Confidence `json:"confidence"`
	SourceType     SourceType `json:"source_type"`
	Explanation    string     `json:"explanation"`
}

// RelevantStats is the pre-sorted, pre-ranked evidence package interpolated
// verbatim into the recommendation prompt. Built fresh per request.
type RelevantStats struct {
	OverallWinRate             float64                     `json:"overall_win_rate"`
	AvgCycleDays               CycleDays                   `json:"avg_cycle_days"`
	Correlations               map[string]float64          `json:"correlations"`
	Products                   map[string]WinRateRecord    `json:"products,omitempty"`
	AvgRevenueByProduct        map[string]float64          `json:"avg_revenue_by_product,omitempty"`
	Sector                     map[string]WinRateRecord    `json:"sector,omitempty"`
	Region                     map[string]WinRateRecord    `json:"region,omitempty"`
	CurrentRep                 *RepRecord                  `json:"current_rep,omitempty"`
	TopReps                    []RepRecord                 `json:"top_reps"`
	ProductSector              map[string]float64          `json:"product_sector,omitempty"`
	Simulations                []Simulation                `json:"simulations"`
	QualitativeInsights        QualitativeInsights         `json:"qualitative_insights"`
	QualLiftEstimate           *float64                    `json:"qual_lift_estimate,omitempty"`
	PriceInsight               string                      `json:"price_insight,omitempty"`
	RevenueInsight             string                      `json:"revenue_insight,omitempty"`
	WinProbabilityImprovements []WinProbabilityImprovement `json:"win_probability_improvements"`
}
