// Package offer renders offer letters for accepted applications.
//
// A document is derived data: it is never stored and can be regenerated at
// any time. For identical inputs the output differs only by the date stamp,
// which is taken from the generator's clock and truncated to the day.
package offer

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/target/hiring-api/internal/domain/model"
	apperrors "github.com/target/hiring-api/internal/errors"
)

const (
	// ContentType is the media type of rendered documents.
	ContentType = "application/pdf"

	defaultJobBaseURL = "http://localhost:3000"

	pageMargin   = 72.0  // pt
	qrBox        = 100.0 // pt, bounding box of the embedded code
	qrPixels     = 256
	qrImageName  = "job-reference"
	fontFamily   = "DejaVu"
	bodyFontSize = 12.0
	lineHeight   = 18.0
)

// DejaVu covers Latin Extended, Greek and Cyrillic, so names outside
// cp1252 render as typed. Only the glyphs used are embedded in the output.
//
//go:embed fonts/DejaVuSansCondensed.ttf
var bodyFont []byte

// Input is an accepted application together with its resolved references.
type Input struct {
	Application *model.Application
	Job         *model.Job
	Applicant   *model.User
	Employer    *model.User
}

// Document is a rendered offer letter.
type Document struct {
	Filename    string
	ContentType string
	Bytes       []byte
}

// Options configures a Generator.
type Options struct {
	// JobBaseURL prefixes the canonical job URL encoded in the QR code.
	JobBaseURL string
	// Now supplies the date stamp. Defaults to time.Now.
	Now func() time.Time
}

// Generator renders offer letters as PDF.
type Generator struct {
	jobBaseURL string
	now        func() time.Time
}

// NewGenerator constructs a Generator.
func NewGenerator(opts Options) *Generator {
	base := strings.TrimRight(strings.TrimSpace(opts.JobBaseURL), "/")
	if base == "" {
		base = defaultJobBaseURL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Generator{jobBaseURL: base, now: now}
}

// JobURL returns the canonical URL of a job, which is the QR payload.
func (g *Generator) JobURL(jobID string) string {
	return g.jobBaseURL + "/jobs/" + url.PathEscape(jobID)
}

// Generate renders the document into memory. No bytes are returned on failure.
func (g *Generator) Generate(in Input) (*Document, error) {
	var buf bytes.Buffer
	if err := g.Render(&buf, in); err != nil {
		return nil, err
	}
	return &Document{
		Filename:    Filename(in.Applicant.DisplayName()),
		ContentType: ContentType,
		Bytes:       buf.Bytes(),
	}, nil
}

// Render writes the document to w. All validation and QR encoding happen
// before the first byte is written.
func (g *Generator) Render(w io.Writer, in Input) error {
	if err := validateInput(in); err != nil {
		return err
	}

	jobURL := g.JobURL(in.Job.ID)
	png, err := qrcode.Encode(jobURL, qrcode.Medium, qrPixels)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode job reference code")
	}

	stamp := dayOf(g.now())
	pdf := g.layout(layoutParams{in: in, stamp: stamp, jobURL: jobURL, qr: png})
	if pdfErr := pdf.Error(); pdfErr != nil {
		return apperrors.Wrap(pdfErr, apperrors.ErrCodeInternal, "render offer document")
	}

	var buf bytes.Buffer
	if outErr := pdf.Output(&buf); outErr != nil {
		return apperrors.Wrap(outErr, apperrors.ErrCodeInternal, "render offer document")
	}
	if _, writeErr := buf.WriteTo(w); writeErr != nil {
		return fmt.Errorf("write offer document: %w", writeErr)
	}
	return nil
}

type layoutParams struct {
	in     Input
	stamp  time.Time
	jobURL string
	qr     []byte
}

// layout places content in fixed order: title, date, salutation, offer
// body, role metadata, closing, code and caption.
func (g *Generator) layout(p layoutParams) *fpdf.Fpdf {
	applicant := p.in.Applicant.DisplayName()
	employer := p.in.Employer.DisplayName()
	job := p.in.Job

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCreationDate(p.stamp)
	pdf.SetModificationDate(p.stamp)
	pdf.SetCatalogSort(true)
	pdf.SetCompression(false)
	pdf.SetTitle("Offer Letter", false)
	pdf.SetCreator("hiring-api", false)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddUTF8FontFromBytes(fontFamily, "", bodyFont)
	pdf.AddPage()

	text := func(s string) {
		pdf.MultiCell(0, lineHeight, s, "", "L", false)
	}

	pdf.SetFont(fontFamily, "", 25)
	pdf.CellFormat(0, 36, "OFFER LETTER", "", 1, "C", false, 0, "")
	pdf.Ln(lineHeight)

	pdf.SetFont(fontFamily, "", bodyFontSize)
	text("Date: " + p.stamp.Format("January 2, 2006"))
	pdf.Ln(lineHeight / 2)
	text("Dear " + applicant + ",")
	pdf.Ln(lineHeight / 2)
	text("We are pleased to offer you the position of " + job.Title + " at " + employer + ".")
	pdf.Ln(lineHeight / 2)
	text("Employment Type: " + string(job.EmploymentType))
	text("Location: " + job.Location)
	pdf.Ln(lineHeight / 2)
	text("We look forward to having you on our team.")
	pdf.Ln(lineHeight)
	text("Sincerely,")
	text(employer)
	pdf.Ln(lineHeight)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(qrImageName, opts, bytes.NewReader(p.qr))
	y := pdf.GetY()
	pdf.ImageOptions(qrImageName, pageMargin, y, qrBox, qrBox, false, opts, 0, p.jobURL)
	pdf.SetY(y + qrBox + 4)
	pdf.SetFont(fontFamily, "", 10)
	pdf.CellFormat(0, 14, "Scan to view job details", "", 1, "L", false, 0, "")

	return pdf
}

func validateInput(in Input) error {
	if in.Application == nil {
		return apperrors.Internal("offer input is missing the application")
	}
	if in.Application.Status != model.ApplicationAccepted {
		return apperrors.PreconditionFailed("application has not been accepted")
	}
	if in.Job == nil || in.Applicant == nil || in.Employer == nil {
		return apperrors.Internal("offer input has unresolved references")
	}
	if in.Job.ID != in.Application.JobID || in.Applicant.ID != in.Application.ApplicantID {
		return apperrors.Internal("offer input references do not match the application")
	}
	return nil
}

// Filename derives the download name from the applicant's name.
// Spaces become underscores; characters unsafe in a header value are dropped.
func Filename(applicantName string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 0x20, r == 0x7f, r == '"', r == '\\', r == '/':
			return -1
		default:
			return r
		}
	}, strings.TrimSpace(applicantName))
	if name == "" {
		name = "Applicant"
	}
	return "Offer_Letter_" + name + ".pdf"
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
