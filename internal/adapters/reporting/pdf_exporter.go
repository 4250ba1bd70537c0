package reporting

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/lcalzada-xor/airsight/internal/core/domain"
)

const (
	defaultTitle  = "Wireless Security Assessment"
	maxTableRows  = 15
	maxRecs       = 10
	pageBreakAt   = 260.0
	footerMinSize = 8
)

// PDFExporter exports reports to PDF format
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

func (e *PDFExporter) Extension() string { return "pdf" }

// Export renders the assessment: summary, threats, channels, security
// distribution, networks and recommendations.
func (e *PDFExporter) Export(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	e.addHeader(pdf, tr, doc)
	e.addThreatLevel(pdf, doc.Analysis)
	e.addStatistics(pdf, doc)
	e.addThreats(pdf, tr, doc.Analysis.Threats)
	e.addChannels(pdf, doc.Analysis.Channels)
	e.addSecurity(pdf, doc.Analysis.Security)
	e.addNetworks(pdf, tr, doc.Networks)
	e.addRecommendations(pdf, tr, doc.Analysis.Recommendations)
	e.addFooter(pdf, doc)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) sectionTitle(pdf *gofpdf.Fpdf, title string) {
	if pdf.GetY() > pageBreakAt-20 {
		pdf.AddPage()
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func (e *PDFExporter) emptyNote(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Arial", "I", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 7, text, "", 1, "L", false, 0, "")
	pdf.Ln(5)
}

// addHeader adds the report header
func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, tr func(string) string, doc Document) {
	title := doc.Title
	if title == "" {
		title = defaultTitle
	}
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102) // Dark blue
	pdf.CellFormat(0, 15, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	if !doc.GeneratedAt.IsZero() {
		pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", doc.GeneratedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	}
	if s := doc.Session; s != nil {
		line := fmt.Sprintf("Interface: %s | Scan type: %s | Status: %s", tr(s.Interface), s.ScanType, s.Status)
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
		if !s.StartTime.IsZero() && !s.EndTime.IsZero() {
			period := fmt.Sprintf("Scan Period: %s to %s (%s)",
				s.StartTime.Format("2006-01-02 15:04:05"),
				s.EndTime.Format("15:04:05"),
				s.EndTime.Sub(s.StartTime).Round(1e9))
			pdf.CellFormat(0, 6, period, "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(8)
}

// addThreatLevel adds the prominent threat level display
func (e *PDFExporter) addThreatLevel(pdf *gofpdf.Fpdf, report domain.AnalysisReport) {
	level := report.ThreatLevel
	if level == "" {
		level = domain.ThreatLevelNone
	}
	r, g, b := e.getLevelColor(level)

	pdf.SetFillColor(r, g, b)
	pdf.Rect(20, pdf.GetY(), 170, 24, "F")
	y := pdf.GetY()

	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(25, y+5)
	pdf.CellFormat(90, 14, fmt.Sprintf("Threat level: %s", strings.ToUpper(string(level))), "", 0, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 14)
	pdf.SetXY(120, y+5)
	pdf.CellFormat(65, 14, fmt.Sprintf("%d threat(s)", report.Threats.TotalThreats), "", 0, "R", false, 0, "")

	pdf.SetY(y + 28)
	if report.Error != "" {
		pdf.SetFont("Arial", "I", 9)
		pdf.SetTextColor(220, 53, 69)
		pdf.CellFormat(0, 6, "Note: "+report.Error, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

// getLevelColor returns RGB color based on threat level
func (e *PDFExporter) getLevelColor(level domain.ThreatLevel) (r, g, b int) {
	switch level {
	case domain.ThreatLevelHigh:
		return 220, 53, 69 // Red
	case domain.ThreatLevelMedium:
		return 255, 149, 0 // Orange
	case domain.ThreatLevelLow:
		return 255, 204, 0 // Yellow
	default:
		return 52, 199, 89 // Green
	}
}

// getSeverityColor returns RGB color based on finding severity
func (e *PDFExporter) getSeverityColor(severity domain.Severity) (r, g, b int) {
	switch severity {
	case domain.SeverityHigh:
		return 220, 53, 69
	case domain.SeverityMedium:
		return 255, 149, 0
	default:
		return 52, 199, 89
	}
}

// addStatistics adds the overview grid
func (e *PDFExporter) addStatistics(pdf *gofpdf.Fpdf, doc Document) {
	e.sectionTitle(pdf, "Overview")

	a := doc.Analysis
	signal := "n/a"
	if !a.Signals.NoData {
		signal = fmt.Sprintf("%.1f dBm (%s)", a.Signals.Mean, a.Signals.Quality)
	}
	congestion := a.Channels.Congestion
	if congestion == "" {
		congestion = "none"
	}
	stats := []struct {
		label string
		value string
	}{
		{"Networks", fmt.Sprintf("%d", a.TotalNetworks)},
		{"Clients", fmt.Sprintf("%d", len(doc.Clients))},
		{"Security score", fmt.Sprintf("%.1f/100", a.Security.Score)},
		{"Security level", a.Security.Level},
		{"Vulnerable networks", fmt.Sprintf("%d", a.Security.Vulnerable)},
		{"Channel congestion", congestion},
		{"Average signal", signal},
		{"Analysis time", fmt.Sprintf("%.3fs", a.AnalysisDuration)},
	}

	// Display in 2 columns
	colWidth := 85.0
	for i, stat := range stats {
		x := 20.0
		if i%2 == 1 {
			x = 105.0
		}
		pdf.SetXY(x, pdf.GetY())

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(45, 7, stat.label+":", "", 0, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(0, 102, 204)
		pdf.CellFormat(colWidth-45, 7, stat.value, "", 0, "R", false, 0, "")

		if i%2 == 1 {
			pdf.Ln(7)
		}
	}
	pdf.Ln(8)
}

// addThreats adds the findings table
func (e *PDFExporter) addThreats(pdf *gofpdf.Fpdf, tr func(string) string, threats domain.ThreatReport) {
	e.sectionTitle(pdf, "Threat Findings")

	findings := threats.Findings()
	if len(findings) == 0 {
		e.emptyNote(pdf, "No threats identified")
	} else {
		pdf.SetFillColor(240, 240, 240)
		pdf.SetFont("Arial", "B", 10)
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(25, 8, "Type", "1", 0, "C", true, 0, "")
		pdf.CellFormat(20, 8, "Severity", "1", 0, "C", true, 0, "")
		pdf.CellFormat(65, 8, "Networks", "1", 0, "L", true, 0, "")
		pdf.CellFormat(60, 8, "Reasons", "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "", 8)
		for i, f := range findings {
			if i >= maxTableRows {
				e.emptyNote(pdf, fmt.Sprintf("... and %d more", len(findings)-maxTableRows))
				break
			}
			if pdf.GetY() > pageBreakAt {
				pdf.AddPage()
			}
			pdf.SetTextColor(60, 60, 60)
			pdf.CellFormat(25, 7, string(f.Kind), "1", 0, "C", false, 0, "")

			r, g, b := e.getSeverityColor(f.Severity)
			pdf.SetTextColor(r, g, b)
			pdf.CellFormat(20, 7, string(f.Severity), "1", 0, "C", false, 0, "")

			pdf.SetTextColor(60, 60, 60)
			pdf.CellFormat(65, 7, truncate(tr(networkNames(f.Networks)), 42), "1", 0, "L", false, 0, "")
			pdf.CellFormat(60, 7, truncate(strings.Join(f.Reasons, "; "), 40), "1", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	if len(threats.DeauthActivity) > 0 {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetTextColor(80, 80, 80)
		pdf.CellFormat(0, 6, "Deauthentication activity:", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for i, d := range threats.DeauthActivity {
			if i >= 5 {
				break
			}
			pdf.CellFormat(5, 5, "", "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 5, fmt.Sprintf("- %s: %d frame(s), last %s", d.BSSID, d.Count, d.LastSeen.Format("15:04:05")), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)
}

func networkNames(aps []domain.AccessPoint) string {
	names := make([]string, len(aps))
	for i, ap := range aps {
		ssid := ap.SSID
		if ssid == "" {
			ssid = "<hidden>"
		}
		names[i] = fmt.Sprintf("%s (%s)", ssid, ap.BSSID)
	}
	return strings.Join(names, ", ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// addChannels adds the ranked channel table
func (e *PDFExporter) addChannels(pdf *gofpdf.Fpdf, channels domain.ChannelReport) {
	e.sectionTitle(pdf, "Channel Utilization")

	if len(channels.Ranked) == 0 {
		e.emptyNote(pdf, "No channel data")
		return
	}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(30, 8, "Channel", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 8, "Networks", "1", 0, "C", true, 0, "")
	pdf.CellFormat(50, 8, "Interference", "1", 0, "C", true, 0, "")
	pdf.CellFormat(50, 8, "Quality", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for i, c := range channels.Ranked {
		if i >= maxTableRows {
			break
		}
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", c.Channel), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%d", c.NetworkCount), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 7, fmt.Sprintf("%.1f", c.InterferenceScore), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 7, c.Quality, "1", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	for _, rec := range channels.Recommendations {
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, rec, "", "L", false)
	}
	pdf.Ln(4)
}

// addSecurity adds the encryption distribution
func (e *PDFExporter) addSecurity(pdf *gofpdf.Fpdf, sec domain.SecurityReport) {
	e.sectionTitle(pdf, "Security Distribution")

	if sec.TotalNetworks == 0 {
		e.emptyNote(pdf, "No networks analyzed")
		return
	}

	keys := make([]string, 0, len(sec.Distribution))
	for enc := range sec.Distribution {
		keys = append(keys, string(enc))
	}
	sort.Strings(keys)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(60, 60, 60)
	for _, k := range keys {
		n := sec.Distribution[domain.Encryption(k)]
		pct := float64(n) * 100 / float64(sec.TotalNetworks)
		pdf.CellFormat(40, 6, k, "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", n), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.1f%%", pct), "", 1, "R", false, 0, "")
	}
	pdf.Ln(6)
}

// addNetworks lists the strongest networks
func (e *PDFExporter) addNetworks(pdf *gofpdf.Fpdf, tr func(string) string, aps []domain.AccessPoint) {
	e.sectionTitle(pdf, "Networks")

	if len(aps) == 0 {
		e.emptyNote(pdf, "No networks discovered")
		return
	}

	sorted := append([]domain.AccessPoint(nil), aps...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Signal > sorted[j].Signal })

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(45, 8, "SSID", "1", 0, "L", true, 0, "")
	pdf.CellFormat(38, 8, "BSSID", "1", 0, "L", true, 0, "")
	pdf.CellFormat(15, 8, "Ch", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 8, "Signal", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 8, "Security", "1", 0, "C", true, 0, "")
	pdf.CellFormat(32, 8, "Vendor", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 8)
	for i, ap := range sorted {
		if i >= maxTableRows {
			e.emptyNote(pdf, fmt.Sprintf("... and %d more", len(sorted)-maxTableRows))
			break
		}
		if pdf.GetY() > pageBreakAt {
			pdf.AddPage()
		}
		ssid := ap.SSID
		if ssid == "" {
			ssid = "<hidden>"
		}
		pdf.CellFormat(45, 7, truncate(tr(ssid), 28), "1", 0, "L", false, 0, "")
		pdf.CellFormat(38, 7, ap.BSSID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", ap.Channel), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d dBm", ap.Signal), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 7, string(ap.Encryption), "1", 0, "C", false, 0, "")
		pdf.CellFormat(32, 7, truncate(tr(ap.Vendor), 20), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

// addRecommendations adds the recommendations section
func (e *PDFExporter) addRecommendations(pdf *gofpdf.Fpdf, tr func(string) string, recs []string) {
	e.sectionTitle(pdf, "Recommendations")

	if len(recs) == 0 {
		e.emptyNote(pdf, "No recommendations")
		return
	}

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(60, 60, 60)
	for i, rec := range recs {
		if i >= maxRecs {
			break
		}
		if pdf.GetY() > pageBreakAt {
			pdf.AddPage()
		}
		pdf.MultiCell(0, 6, fmt.Sprintf("%d. %s", i+1, tr(rec)), "", "L", false)
		pdf.Ln(1)
	}
}

// addFooter adds the report footer
func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, doc Document) {
	pdf.SetY(-20)

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	footer := "Generated by airsight"
	if doc.Session != nil && len(doc.Session.ID) >= footerMinSize {
		footer += " | Session: " + doc.Session.ID[:footerMinSize]
	}
	pdf.CellFormat(0, 5, footer, "", 1, "C", false, 0, "")
}
