// Package report renders emission statistics into exportable summaries.
// PDF output is simulated: an export carries a markdown body and the file
// name a real renderer would produce.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/carbontrack/carbontrack-server/internal/domain"
)

// Export is the result of a simulated report export.
type Export struct {
	ID          string    `json:"export_id"`
	Simulated   bool      `json:"simulated"`
	Format      string    `json:"format"`
	Filename    string    `json:"filename"`
	GeneratedAt time.Time `json:"generated_at"`
	Markdown    string    `json:"markdown"`
}

// Input is everything needed to render one report.
type Input struct {
	Company     *domain.Company
	Range       domain.DateRange
	Stats       *domain.EmissionStats
	Warnings    []domain.Warning
	GeneratedAt time.Time
}

// Renderer formats reports for one locale.
type Renderer struct {
	printer *message.Printer
}

// NewRenderer returns a Renderer for tag. The zero tag means English.
func NewRenderer(tag language.Tag) *Renderer {
	if tag == language.Und {
		tag = language.English
	}
	return &Renderer{printer: message.NewPrinter(tag)}
}

// Export renders in and assigns a fresh export id.
func (r *Renderer) Export(in Input) (*Export, error) {
	if in.Company == nil || in.Stats == nil {
		return nil, fmt.Errorf("report: company and stats are required")
	}
	exportID, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generate export id: %w", err)
	}
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = time.Now().UTC()
	}

	return &Export{
		ID:          exportID.String(),
		Simulated:   true,
		Format:      "pdf",
		Filename:    Filename(in.Company.Name, in.GeneratedAt),
		GeneratedAt: in.GeneratedAt,
		Markdown:    r.Markdown(in),
	}, nil
}

// Filename is the name of the PDF a real export would produce.
func Filename(companyName string, at time.Time) string {
	slug := Slugify(companyName)
	if slug == "" {
		slug = "company"
	}
	return fmt.Sprintf("%s-emissions-%s.pdf", slug, at.Format("20060102"))
}

// Markdown renders the report body.
func (r *Renderer) Markdown(in Input) string {
	p := r.printer
	s := in.Stats
	var b strings.Builder

	fmt.Fprintf(&b, "# Emissions report: %s\n\n", in.Company.Name)
	fmt.Fprintf(&b, "- Period: %s\n", describeRange(in.Range))
	fmt.Fprintf(&b, "- Generated: %s\n", in.GeneratedAt.UTC().Format(time.RFC1123))
	b.WriteString(p.Sprintf("- Activities: %d\n", s.ActivityCount))
	b.WriteString(p.Sprintf("- Total emissions: %.2f CO2e\n", s.TotalEmissions))
	if s.MixedUnits {
		b.WriteString("\n> Values recorded in kg and tonnes are summed without conversion.\n")
	}
	for _, w := range in.Warnings {
		fmt.Fprintf(&b, "\n> %s: %s\n", w.Field, w.Message)
	}

	b.WriteString("\n## By category\n\n")
	totals := s.CategoryTotals()
	if len(totals) == 0 {
		b.WriteString("No activities recorded.\n")
	} else {
		b.WriteString("| Category | Emissions | Share |\n|---|---:|---:|\n")
		for _, ct := range totals {
			share := 0.0
			if s.TotalEmissions > 0 {
				share = ct.Total / s.TotalEmissions * 100
			}
			b.WriteString(p.Sprintf("| %s | %.2f | %.1f%% |\n", ct.Category.Label(), ct.Total, share))
		}
	}

	if len(s.MonthlyTrend) > 0 {
		b.WriteString("\n## Monthly trend\n\n| Month | Emissions |\n|---|---:|\n")
		for _, m := range s.MonthlyTrend {
			b.WriteString(p.Sprintf("| %s | %.2f |\n", m.Month, m.Total))
		}
	}

	if len(s.HighestEmissions) > 0 {
		b.WriteString("\n## Highest emitting activities\n\n")
		for i, a := range s.HighestEmissions {
			b.WriteString(p.Sprintf("%d. %s (%s, %s): %.2f %s\n",
				i+1, a.Title, a.Category.Label(), domain.FormatDate(a.Date), a.EmissionValue, a.EmissionUnit))
		}
	}

	return b.String()
}

func describeRange(r domain.DateRange) string {
	switch {
	case r.From != nil && r.To != nil:
		return domain.FormatDate(*r.From) + " to " + domain.FormatDate(*r.To)
	case r.From != nil:
		return "from " + domain.FormatDate(*r.From)
	case r.To != nil:
		return "until " + domain.FormatDate(*r.To)
	default:
		return "all time"
	}
}
