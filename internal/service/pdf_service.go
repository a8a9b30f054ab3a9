package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/gen2brain/go-fitz"
	"github.com/transparentpro/transparency-api/internal/model"
)

// ReportRenderer turns an assessed product into printable PDF bytes. It never
// writes persisted state; a failure leaves the database untouched.
type ReportRenderer interface {
	RenderReport(ctx context.Context, product *model.Product, questions []model.Question, report *model.Report) ([]byte, error)
}

// ChromeRenderer prints the report HTML through headless Chrome.
type ChromeRenderer struct {
	Timeout time.Duration
}

func NewChromeRenderer() *ChromeRenderer {
	return &ChromeRenderer{Timeout: 2 * time.Minute}
}

func (r *ChromeRenderer) RenderReport(ctx context.Context, product *model.Product, questions []model.Question, report *model.Report) ([]byte, error) {
	html, err := buildReportHTML(product, questions, report)
	if err != nil {
		return nil, &model.RenderError{Err: err}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.NoSandbox,
	)
	allocCtx, cancel := chromedp.NewExecAllocator(timeoutCtx, opts...)
	defer cancel()

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var buf []byte
	err = chromedp.Run(taskCtx,
		chromedp.Navigate("data:text/html;base64,"+base64.StdEncoding.EncodeToString([]byte(html))),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var printErr error
			// A4 with 20mm margins, backgrounds on. PrintToPDF takes inches.
			buf, _, printErr = page.PrintToPDF().
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.79).
				WithMarginBottom(0.79).
				WithMarginLeft(0.79).
				WithMarginRight(0.79).
				WithPrintBackground(true).
				Do(ctx)
			return printErr
		}),
	)
	if err != nil {
		return nil, &model.RenderError{Err: fmt.Errorf("chromedp print error: %w", err)}
	}

	if err := validatePDF(buf); err != nil {
		return nil, &model.RenderError{Err: err}
	}
	return buf, nil
}

// validatePDF rejects empty or truncated output before it reaches the client.
func validatePDF(buf []byte) error {
	if len(buf) == 0 {
		return fmt.Errorf("renderer produced no output")
	}
	doc, err := fitz.NewFromMemory(buf)
	if err != nil {
		return fmt.Errorf("produced PDF is unreadable: %w", err)
	}
	defer doc.Close()
	if doc.NumPage() == 0 {
		return fmt.Errorf("produced PDF has no pages")
	}
	return nil
}

// ReportFilename derives the download filename from the product name:
// non-alphanumeric runes become underscores, the result is lower-cased.
func ReportFilename(productName string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, productName)
	return "transparency-report-" + strings.ToLower(sanitized) + ".pdf"
}

type reportPage struct {
	Product       *model.Product
	Questions     []model.Question
	Report        *model.Report
	AnsweredCount int
	Completeness  int
	GeneratedOn   string
	GeneratedAt   string
}

func buildReportHTML(product *model.Product, questions []model.Question, report *model.Report) (string, error) {
	answered := 0
	for _, q := range questions {
		if q.Answered() {
			answered++
		}
	}
	completeness := 0
	if len(questions) > 0 {
		completeness = int(math.Round(float64(answered) / float64(len(questions)) * 100))
	}

	now := time.Now()
	data := reportPage{
		Product:       product,
		Questions:     questions,
		Report:        report,
		AnsweredCount: answered,
		Completeness:  completeness,
		GeneratedOn:   now.Format("January 2, 2006"),
		GeneratedAt:   now.Format(time.RFC3339),
	}

	var out bytes.Buffer
	if err := reportTemplate.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render report template: %w", err)
	}
	return out.String(), nil
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"title": titleCase,
	"orDash": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "Not specified"
		}
		return s
	},
}).Parse(reportHTML))

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

const reportHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Product Transparency Report - {{.Product.Name}}</title>
<style>
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0; }
    .header { background: linear-gradient(135deg, #2563eb 0%, #10b981 100%); color: white; padding: 40px 0; text-align: center; }
    .header h1 { margin: 0; font-size: 2.5em; font-weight: 700; }
    .header p { margin: 10px 0 0 0; font-size: 1.1em; opacity: 0.9; }
    .container { max-width: 800px; margin: 0 auto; padding: 0 20px; }
    .section { margin: 40px 0; page-break-inside: avoid; }
    .section-title { font-size: 1.5em; font-weight: 600; color: #2563eb; border-bottom: 2px solid #e5e7eb; padding-bottom: 10px; margin-bottom: 20px; }
    .score-container { display: flex; justify-content: space-around; margin: 30px 0; text-align: center; }
    .score-item { background: #f8fafc; padding: 20px; border-radius: 8px; border: 1px solid #e2e8f0; min-width: 120px; }
    .score-value { font-size: 2em; font-weight: bold; color: #10b981; }
    .score-label { font-size: 0.9em; color: #64748b; margin-top: 5px; }
    .info-grid { display: grid; grid-template-columns: 1fr 1fr; gap: 20px; margin: 20px 0; }
    .info-item { display: flex; justify-content: space-between; padding: 10px 0; border-bottom: 1px solid #f1f5f9; }
    .info-label { font-weight: 600; color: #475569; }
    .info-value { color: #334155; }
    .question-item { background: #f8fafc; border: 1px solid #e2e8f0; border-radius: 8px; padding: 20px; margin: 15px 0; page-break-inside: avoid; }
    .question-text { font-weight: 600; color: #1e293b; margin-bottom: 10px; }
    .question-meta { font-size: 0.85em; color: #64748b; margin-bottom: 10px; }
    .question-answer { background: white; border: 1px solid #e2e8f0; border-radius: 4px; padding: 15px; color: #334155; white-space: pre-wrap; }
    .insights-list, .recommendations-list { list-style: none; padding: 0; }
    .insights-list li, .recommendations-list li { background: #f0f9ff; border-left: 4px solid #2563eb; padding: 15px; margin: 10px 0; border-radius: 0 4px 4px 0; }
    .recommendations-list li { background: #ecfdf5; border-left-color: #10b981; }
    .footer { margin-top: 60px; padding: 30px 0; text-align: center; border-top: 1px solid #e2e8f0; color: #64748b; font-size: 0.9em; }
</style>
</head>
<body>
<div class="header">
    <div class="container">
        <h1>Product Transparency Report</h1>
        <p>Generated on {{.GeneratedOn}}</p>
    </div>
</div>

<div class="container">
    <div class="section">
        <h2 class="section-title">Executive Summary</h2>
        <p>This comprehensive transparency assessment for <strong>{{.Product.Name}}</strong> demonstrates the product's commitment to transparency and sustainability practices. Our AI-powered evaluation reveals performance across key metrics.</p>
        <div class="score-container">
            <div class="score-item"><div class="score-value">{{printf "%.0f" .Report.OverallScore}}</div><div class="score-label">Overall Score</div></div>
            <div class="score-item"><div class="score-value">{{printf "%.0f" .Report.SustainabilityScore}}</div><div class="score-label">Sustainability</div></div>
            <div class="score-item"><div class="score-value">{{printf "%.0f" .Report.QualityScore}}</div><div class="score-label">Quality</div></div>
            <div class="score-item"><div class="score-value">{{printf "%.0f" .Report.TransparencyScore}}</div><div class="score-label">Transparency</div></div>
        </div>
    </div>

    <div class="section">
        <h2 class="section-title">Product Information</h2>
        <div class="info-grid">
            <div>
                <div class="info-item"><span class="info-label">Product Name:</span><span class="info-value">{{.Product.Name}}</span></div>
                <div class="info-item"><span class="info-label">Category:</span><span class="info-value">{{.Product.Category}}</span></div>
                <div class="info-item"><span class="info-label">Brand:</span><span class="info-value">{{orDash .Product.Brand}}</span></div>
                <div class="info-item"><span class="info-label">Materials:</span><span class="info-value">{{orDash .Product.Materials}}</span></div>
            </div>
            <div>
                <div class="info-item"><span class="info-label">Weight:</span><span class="info-value">{{orDash .Product.Weight}}</span></div>
                <div class="info-item"><span class="info-label">Dimensions:</span><span class="info-value">{{orDash .Product.Dimensions}}</span></div>
                <div class="info-item"><span class="info-label">Manufacturing Country:</span><span class="info-value">{{orDash .Product.ManufacturingCountry}}</span></div>
                <div class="info-item"><span class="info-label">Assessment Completeness:</span><span class="info-value">{{.Completeness}}%</span></div>
            </div>
        </div>
        {{if .Product.Description}}
        <div style="margin-top: 20px;">
            <h3 style="color: #475569; margin-bottom: 10px;">Description</h3>
            <p style="background: #f8fafc; padding: 15px; border-radius: 8px; border: 1px solid #e2e8f0;">{{.Product.Description}}</p>
        </div>
        {{end}}
    </div>

    <div class="section">
        <h2 class="section-title">Assessment Questions &amp; Responses</h2>
        <p style="margin-bottom: 20px; color: #64748b;">
            Total Questions: {{len .Questions}} |
            Answered: {{.AnsweredCount}} |
            Completeness: {{.Completeness}}%
        </p>
        {{range .Questions}}
        <div class="question-item">
            <div class="question-text">{{.QuestionText}}</div>
            <div class="question-meta">Category: {{title .Category}} &bull; Importance: {{title .Importance}}</div>
            <div class="question-answer">{{if .Answer}}{{.Answer}}{{else}}No response provided{{end}}</div>
        </div>
        {{end}}
    </div>

    {{if .Report.Insights}}
    <div class="section">
        <h2 class="section-title">AI-Generated Insights</h2>
        <ul class="insights-list">
            {{range .Report.Insights}}<li>{{.}}</li>{{end}}
        </ul>
    </div>
    {{end}}

    {{if .Report.Recommendations}}
    <div class="section">
        <h2 class="section-title">Recommendations</h2>
        <ul class="recommendations-list">
            {{range .Report.Recommendations}}<li>{{.}}</li>{{end}}
        </ul>
    </div>
    {{end}}

    <div class="footer">
        <p>This report was generated by the TransparentPro AI-powered transparency assessment platform.</p>
        <p>Report ID: {{.Report.ID}} | Generated: {{.GeneratedAt}}</p>
    </div>
</div>
</body>
</html>
`
