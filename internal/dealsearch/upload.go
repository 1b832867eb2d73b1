package dealsearch

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"
)

const UploadBatchSize = 400

// SourceRow is one opportunity from the CSV export before enrichment.
type SourceRow struct {
	OpportunityID   string
	SalesRep        string
	Product         string
	ProductSeries   string
	SalesPrice      float64
	AccountName     string
	AccountSector   string
	AccountRegion   string
	AccountSize     float64
	AccountRevenue  float64
	DealStage       string
	DealEngageDate  *time.Time
	DealCloseDate   *time.Time
	RevenueFromDeal float64
	Notes           string
}

// indexDocument is one upload payload entry. Derived fields are pointers so
// a row with missing dates uploads null rather than zero.
type indexDocument struct {
	Action             string    `json:"@search.action"`
	OpportunityID      string    `json:"opportunity_id"`
	SalesRep           string    `json:"sales_rep"`
	Product            string    `json:"product"`
	ProductSeries      string    `json:"product_series"`
	SalesPrice         float64   `json:"sales_price"`
	AccountName        string    `json:"account_name"`
	AccountSector      string    `json:"account_sector"`
	AccountRegion      string    `json:"account_region"`
	AccountSize        float64   `json:"account_size"`
	AccountRevenue     float64   `json:"account_revenue"`
	DealStage          string    `json:"deal_stage"`
	DealEngageDate     *string   `json:"deal_engage_date"`
	DealCloseDate      *string   `json:"deal_close_date"`
	RevenueFromDeal    float64   `json:"revenue_from_deal"`
	SalesCycleDuration *float64  `json:"sales_cycle_duration"`
	DealValueRatio     *float64  `json:"deal_value_ratio"`
	Content            string    `json:"content"`
	Notes              string    `json:"Notes"`
	TextVector         []float32 `json:"text_vector"`
}

// UploadStats summarizes one bulk upload run.
type UploadStats struct {
	Batches  int
	Uploaded int
	Skipped  int
}

// UploadBatches embeds and uploads rows in batches of UploadBatchSize. Rows
// whose embedding fails are skipped and logged, not fatal; an index rejection
// of a whole batch is.
func (c *Client) UploadBatches(ctx context.Context, rows []SourceRow) (UploadStats, error) {
	stats := UploadStats{}
	for start := 0; start < len(rows); start += UploadBatchSize {
		end := start + UploadBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		docs := make([]indexDocument, 0, end-start)
		for _, row := range rows[start:end] {
			doc, err := c.buildDocument(ctx, row)
			if err != nil {
				stats.Skipped++
				log.Printf("deal-upload row skipped opportunity_id=%s err=%v", row.OpportunityID, err)
				continue
			}
			docs = append(docs, doc)
		}
		if len(docs) == 0 {
			continue
		}
		if err := c.uploadDocuments(ctx, docs); err != nil {
			return stats, fmt.Errorf("upload batch %d: %w", stats.Batches+1, err)
		}
		stats.Batches++
		stats.Uploaded += len(docs)
		log.Printf("deal-upload batch=%d uploaded=%d", stats.Batches, len(docs))
	}
	return stats, nil
}

func (c *Client) buildDocument(ctx context.Context, row SourceRow) (indexDocument, error) {
	content := fmt.Sprintf(
		"Product: %s, Sector: %s, Region: %s, Stage: %s, Sales Rep: %s, Price: %v, Revenue: %v, "+
			"Account Size: %v, Account Revenue: %v, Engage Date: %s, Close Date: %s",
		row.Product, row.AccountSector, row.AccountRegion, row.DealStage, row.SalesRep,
		row.SalesPrice, row.RevenueFromDeal, row.AccountSize, row.AccountRevenue,
		formatDate(row.DealEngageDate), formatDate(row.DealCloseDate))

	embedding, err := c.Embed(ctx, content)
	if err != nil {
		return indexDocument{}, err
	}

	doc := indexDocument{
		Action:          "upload",
		OpportunityID:   row.OpportunityID,
		SalesRep:        row.SalesRep,
		Product:         row.Product,
		ProductSeries:   row.ProductSeries,
		SalesPrice:      row.SalesPrice,
		AccountName:     row.AccountName,
		AccountSector:   row.AccountSector,
		AccountRegion:   row.AccountRegion,
		AccountSize:     row.AccountSize,
		AccountRevenue:  row.AccountRevenue,
		DealStage:       strings.ToLower(strings.TrimSpace(row.DealStage)),
		RevenueFromDeal: row.RevenueFromDeal,
		Content:         content,
		Notes:           row.Notes,
		TextVector:      embedding,
	}
	if row.DealEngageDate != nil {
		s := row.DealEngageDate.UTC().Format(time.RFC3339)
		doc.DealEngageDate = &s
	}
	if row.DealCloseDate != nil {
		s := row.DealCloseDate.UTC().Format(time.RFC3339)
		doc.DealCloseDate = &s
	}
	if cycle, ok := SalesCycleDuration(row.DealEngageDate, row.DealCloseDate); ok {
		doc.SalesCycleDuration = &cycle
	}
	if ratio, ok := DealValueRatio(row.RevenueFromDeal, row.SalesPrice); ok {
		doc.DealValueRatio = &ratio
	}
	return doc, nil
}

func (c *Client) uploadDocuments(ctx context.Context, docs []indexDocument) error {
	url := fmt.Sprintf("%s/indexes/%s/docs/index?api-version=%s",
		c.cfg.SearchEndpoint, c.cfg.IndexName, c.cfg.SearchAPIVersion)
	return c.postJSON(ctx, url, c.cfg.SearchKey, map[string]any{"value": docs}, nil)
}

// SalesCycleDuration is the whole-day span between engagement and close.
func SalesCycleDuration(engage, close *time.Time) (float64, bool) {
	if engage == nil || close == nil {
		return 0, false
	}
	return float64(int(close.Sub(*engage).Hours() / 24)), true
}

// DealValueRatio is revenue over price, undefined for a zero price.
func DealValueRatio(revenue, price float64) (float64, bool) {
	if price == 0 {
		return 0, false
	}
	return revenue / price, true
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ReadSourceCSV parses the opportunity export. Header order is fixed by the
// export format; rows with unparsable numeric fields fail the load.
func ReadSourceCSV(r io.Reader) ([]SourceRow, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv has no data rows")
	}
	col := map[string]int{}
	for i, name := range records[0] {
		col[strings.TrimSpace(name)] = i
	}
	required := []string{
		"opportunity_id", "sales_rep", "product", "product_series", "sales_price",
		"account_name", "account_sector", "account_region", "account_size",
		"account_revenue", "deal_stage", "deal_engage_date", "deal_close_date",
		"revenue_from_deal",
	}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("csv missing column %q", name)
		}
	}

	rows := make([]SourceRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		row := SourceRow{
			OpportunityID: rec[col["opportunity_id"]],
			SalesRep:      rec[col["sales_rep"]],
			Product:       rec[col["product"]],
			ProductSeries: rec[col["product_series"]],
			AccountName:   rec[col["account_name"]],
			AccountSector: rec[col["account_sector"]],
			AccountRegion: rec[col["account_region"]],
			DealStage:     rec[col["deal_stage"]],
		}
		if idx, ok := col["Notes"]; ok && idx < len(rec) {
			row.Notes = rec[idx]
		}
		var parseErr error
		row.SalesPrice = parseFloat(rec[col["sales_price"]], &parseErr)
		row.AccountSize = parseFloat(rec[col["account_size"]], &parseErr)
		row.AccountRevenue = parseFloat(rec[col["account_revenue"]], &parseErr)
		row.RevenueFromDeal = parseFloat(rec[col["revenue_from_deal"]], &parseErr)
		if parseErr != nil {
			return nil, fmt.Errorf("csv row %d: %w", i+2, parseErr)
		}
		row.DealEngageDate = parseDate(rec[col["deal_engage_date"]])
		row.DealCloseDate = parseDate(rec[col["deal_close_date"]])
		rows = append(rows, row)
	}
	return rows, nil
}

func parseFloat(s string, errOut *error) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && *errOut == nil {
		*errOut = fmt.Errorf("parse number %q: %w", s, err)
	}
	return v
}

// parseDate accepts the export's day-first format plus RFC 3339. Unparsable
// dates come back nil and the derived fields stay null.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "02-01-2006", "02/01/2006", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
