package report

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/joelkehle/sales-advisor/internal/advisor"
)

// ChromiumPDFRenderer turns a finished analysis into a printable PDF via a
// headless Chromium instance.
type ChromiumPDFRenderer struct {
	chromePath string
}

func NewChromiumPDFRenderer() *ChromiumPDFRenderer {
	return &ChromiumPDFRenderer{chromePath: detectChromePath()}
}

func (r *ChromiumPDFRenderer) Render(ctx context.Context, res advisor.ResponseEnvelope, prompt string) ([]byte, error) {
	htmlDoc, err := buildHTML(res, prompt)
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	}
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(timeoutCtx, append(chromedp.DefaultExecAllocatorOptions[:], opts...)...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	var pdf []byte
	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(htmlDoc))
	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			footer := `<div style="width:100%;text-align:center;font-size:9px;color:#666;padding-right:8px;">` +
				`Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`
			out, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate(`<div></div>`).
				WithFooterTemplate(footer).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.5).
				WithMarginBottom(0.75).
				WithMarginLeft(0.45).
				WithMarginRight(0.45).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = out
			return nil
		}),
	); err != nil {
		return nil, err
	}
	return pdf, nil
}

// BuildMarkdown composes the report body. The recommendation text is already
// markdown from the model; this wraps it with the opportunity context and the
// precomputed improvement table.
func BuildMarkdown(res advisor.ResponseEnvelope, prompt string) string {
	var out strings.Builder
	out.WriteString("# Sales Opportunity Advisory Report\n\n")
	out.WriteString("## Opportunity\n\n")
	out.WriteString(strings.TrimSpace(prompt) + "\n\n")

	if a := res.ExtractedAttributes; a != nil {
		out.WriteString("## Extracted Attributes\n\n")
		out.WriteString("| Attribute | Value |\n|---|---|\n")
		writeAttrRow(&out, "Product", strPtr(a.Product))
		writeAttrRow(&out, "Sector", strPtr(a.Sector))
		writeAttrRow(&out, "Region", strPtr(a.Region))
		writeAttrRow(&out, "Sales Price", floatPtr(a.SalesPrice))
		writeAttrRow(&out, "Expected Revenue", floatPtr(a.ExpectedRevenue))
		writeAttrRow(&out, "Sales Rep", strPtr(a.CurrentRep))
		out.WriteString("\n")
	}

	if rs := res.RelevantStats; rs != nil && len(rs.WinProbabilityImprovements) > 0 {
		out.WriteString("## Win Probability Improvements\n\n")
		out.WriteString("| Rank | Recommendation | Uplift | Confidence |\n|---|---|---|---|\n")
		for _, imp := range rs.WinProbabilityImprovements {
			fmt.Fprintf(&out, "| %d | %s | %.2f%% | %s |\n",
				imp.Rank, imp.Recommendation, imp.UpliftPercent, imp.Confidence)
		}
		out.WriteString("\n")
	}

	out.WriteString("## Recommendation\n\n")
	out.WriteString(strings.TrimSpace(res.Recommendation) + "\n")
	return out.String()
}

func writeAttrRow(out *strings.Builder, label, value string) {
	if value == "" {
		value = "not stated"
	}
	fmt.Fprintf(out, "| %s | %s |\n", label, value)
}

func strPtr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatPtr(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *p)
}

func buildHTML(res advisor.ResponseEnvelope, prompt string) (string, error) {
	var content strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(BuildMarkdown(res, prompt)), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	contentHTML := applyPrintLayoutHooks(content.String())

	return "<!doctype html><html><head><meta charset='utf-8'><title>Sales Advisory Report</title>" +
		"<style>" + reportCSS +
		"html,body,*{-webkit-print-color-adjust:exact !important;print-color-adjust:exact !important;} " +
		`h2[data-page-break-before="true"]{break-before:page;page-break-before:always;} ` +
		"@media print{ @page{size:auto;margin:12mm;} body{background:#fff !important;padding:0;} }" +
		"</style></head><body>" +
		"<div class='report-wrap'><div class='report-meta'>" + buildMetaHTML(res) + "</div>" +
		"<div class='report-badges'>" + buildBadgeHTML(res) + "</div>" +
		"<div class='report-html'>" + contentHTML + "</div></div>" +
		"</body></html>", nil
}

const reportCSS = "body{font-family:Georgia,serif;color:#1c1917;background:#fff;padding:0.6rem;} " +
	".report-wrap{max-width:1000px;margin:0 auto;border-left:3px solid #1e3a8a;border-right:3px solid #1e3a8a;padding:0 0.65rem;} " +
	".report-meta{color:#44403c;font-size:0.85rem;} .report-meta strong{color:#1c1917;} " +
	".report-badge{display:inline-block;background:#dbeafe;color:#1e3a8a;border:1px solid #93c5fd;border-radius:4px;padding:0.1rem 0.45rem;margin:0.2rem 0.2rem 0 0;font-size:0.75rem;} " +
	".report-html table{width:100%;border-collapse:collapse;border:1px solid #a8a29e;font-size:0.8rem;} " +
	".report-html th,.report-html td{border:1px solid #a8a29e;padding:0.35rem 0.45rem;text-align:left;vertical-align:top;} " +
	".report-html thead th{background:#f1f5f9;font-weight:700;} "

// applyPrintLayoutHooks starts the recommendation section on a fresh page so
// the evidence tables never split it.
func applyPrintLayoutHooks(contentHTML string) string {
	reRecommendation := regexp.MustCompile(`(?i)<h2([^>]*)>\s*Recommendation\s*</h2>`)
	return reRecommendation.ReplaceAllString(contentHTML, `<h2$1 data-page-break-before="true">Recommendation</h2>`)
}

func buildMetaHTML(res advisor.ResponseEnvelope) string {
	var out strings.Builder
	if res.RequestID != "" {
		out.WriteString("<div><strong>Request:</strong> " + html.EscapeString(res.RequestID) + "</div>")
	}
	if res.Metadata.Model != "" {
		out.WriteString("<div><strong>Model:</strong> " + html.EscapeString(res.Metadata.Model) + "</div>")
	}
	if !res.Metadata.CompletedAt.IsZero() {
		out.WriteString("<div><strong>Date:</strong> " +
			html.EscapeString(res.Metadata.CompletedAt.In(time.Local).Format("January 2, 2006 at 3:04 PM MST")) + "</div>")
	}
	return out.String()
}

func buildBadgeHTML(res advisor.ResponseEnvelope) string {
	var out strings.Builder
	if res.Success {
		out.WriteString("<span class='report-badge'>Analysis Complete</span>")
	} else {
		out.WriteString("<span class='report-badge'>Analysis Incomplete</span>")
	}
	if rs := res.RelevantStats; rs != nil {
		out.WriteString(fmt.Sprintf("<span class='report-badge'>Baseline Win Rate: %.0f%%</span>", rs.OverallWinRate*100))
	}
	return out.String()
}

func detectChromePath() string {
	candidates := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
