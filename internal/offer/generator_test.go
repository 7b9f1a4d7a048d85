package offer

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/hiring-api/internal/domain/auth"
	"github.com/target/hiring-api/internal/domain/model"
	apperrors "github.com/target/hiring-api/internal/errors"
)

func acceptedInput() Input {
	return Input{
		Application: &model.Application{
			ID:          "app-1",
			JobID:       "job-1",
			ApplicantID: "seeker-1",
			Status:      model.ApplicationAccepted,
		},
		Job: &model.Job{
			ID:             "job-1",
			Title:          "Engineer",
			Location:       "Remote",
			EmploymentType: model.EmploymentFullTime,
			EmployerID:     "emp-1",
		},
		Applicant: &model.User{ID: "seeker-1", FirstName: "Ada", LastName: "Lovelace", Role: domainauth.RoleJobSeeker},
		Employer:  &model.User{ID: "emp-1", FirstName: "Acme", LastName: "Corp", Role: domainauth.RoleEmployer},
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// shown returns s as it appears in an uncompressed content stream set in an
// embedded TrueType font: UTF-16BE with string delimiters escaped.
func shown(s string) []byte {
	var b []byte
	for _, u := range utf16.Encode([]rune(s)) {
		b = append(b, byte(u>>8), byte(u))
	}
	b = bytes.ReplaceAll(b, []byte(`\`), []byte(`\\`))
	b = bytes.ReplaceAll(b, []byte("("), []byte(`\(`))
	return bytes.ReplaceAll(b, []byte(")"), []byte(`\)`))
}

func TestGenerator_Generate(t *testing.T) {
	g := NewGenerator(Options{
		JobBaseURL: "https://jobs.example.com/",
		Now:        fixedClock(time.Date(2025, time.March, 4, 15, 30, 0, 0, time.UTC)),
	})

	doc, err := g.Generate(acceptedInput())
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, "Offer_Letter_Ada_Lovelace.pdf", doc.Filename)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.True(t, bytes.HasPrefix(doc.Bytes, []byte("%PDF-")), "document must start with a PDF header")

	for _, want := range []string{
		"OFFER LETTER",
		"Date: March 4, 2025",
		"Dear Ada Lovelace,",
		"Employment Type: Full-time",
		"Location: Remote",
		"Sincerely,",
		"Scan to view job details",
	} {
		assert.True(t, bytes.Contains(doc.Bytes, shown(want)), "missing %q", want)
	}
	assert.True(t, bytes.Contains(doc.Bytes, []byte("https://jobs.example.com/jobs/job-1")), "missing job link")
}

func TestGenerator_NamesOutsideLatin1(t *testing.T) {
	in := acceptedInput()
	in.Applicant.FirstName, in.Applicant.LastName = "Łukasz", "Wójcik"
	in.Employer.FirstName, in.Employer.LastName = "Ωmega", "Ltd (EU)"

	doc, err := NewGenerator(Options{}).Generate(in)
	require.NoError(t, err)

	assert.True(t, bytes.Contains(doc.Bytes, shown("Dear Łukasz Wójcik,")))
	assert.True(t, bytes.Contains(doc.Bytes, shown("Ωmega Ltd (EU)")))
	assert.False(t, bytes.Contains(doc.Bytes, []byte("W\xf3jcik")))
	assert.Equal(t, "Offer_Letter_Łukasz_Wójcik.pdf", doc.Filename)
}

func TestGenerator_DeterministicForSameDay(t *testing.T) {
	morning := NewGenerator(Options{Now: fixedClock(time.Date(2025, time.March, 4, 8, 0, 0, 0, time.UTC))})
	evening := NewGenerator(Options{Now: fixedClock(time.Date(2025, time.March, 4, 22, 45, 0, 0, time.UTC))})

	first, err := morning.Generate(acceptedInput())
	require.NoError(t, err)
	second, err := evening.Generate(acceptedInput())
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first.Bytes, second.Bytes), "same-day documents must be byte-identical")

	nextDay := NewGenerator(Options{Now: fixedClock(time.Date(2025, time.March, 5, 8, 0, 0, 0, time.UTC))})
	third, err := nextDay.Generate(acceptedInput())
	require.NoError(t, err)
	assert.False(t, bytes.Equal(first.Bytes, third.Bytes))
}

func TestGenerator_RequiresAcceptedApplication(t *testing.T) {
	g := NewGenerator(Options{})
	for _, status := range []model.ApplicationStatus{model.ApplicationPending, model.ApplicationRejected} {
		in := acceptedInput()
		in.Application.Status = status

		doc, err := g.Generate(in)
		require.Error(t, err)
		assert.Nil(t, doc)
		assert.True(t, apperrors.IsPreconditionFailed(err), "status %s: %v", status, err)

		var buf bytes.Buffer
		require.Error(t, g.Render(&buf, in))
		assert.Zero(t, buf.Len(), "no bytes may be written for %s", status)
	}
}

func TestGenerator_UnresolvedReferences(t *testing.T) {
	g := NewGenerator(Options{})

	in := acceptedInput()
	in.Employer = nil
	_, err := g.Generate(in)
	assert.True(t, apperrors.IsInternal(err))

	in = acceptedInput()
	in.Job.ID = "job-2"
	_, err = g.Generate(in)
	assert.True(t, apperrors.IsInternal(err))
}

func TestGenerator_EncodingFailureIsFatal(t *testing.T) {
	// QR codes cap out well below this payload size.
	g := NewGenerator(Options{JobBaseURL: "https://example.com/" + strings.Repeat("a", 8000)})

	var buf bytes.Buffer
	err := g.Render(&buf, acceptedInput())
	require.Error(t, err)
	assert.True(t, apperrors.IsInternal(err))
	assert.Zero(t, buf.Len())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestGenerator_RenderWriteError(t *testing.T) {
	g := NewGenerator(Options{})
	err := g.Render(failingWriter{}, acceptedInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
}

func TestGenerator_JobURL(t *testing.T) {
	assert.Equal(t, "http://localhost:3000/jobs/job-1", NewGenerator(Options{}).JobURL("job-1"))
	assert.Equal(t, "https://x.test/jobs/a%2Fb", NewGenerator(Options{JobBaseURL: "https://x.test//"}).JobURL("a/b"))
}

func TestFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{in: "Ada Lovelace", want: "Offer_Letter_Ada_Lovelace.pdf"},
		{in: "  Mary Ann Evans  ", want: "Offer_Letter_Mary_Ann_Evans.pdf"},
		{in: `Bobby "Tables" /x\`, want: "Offer_Letter_Bobby_Tables_x.pdf"},
		{in: "Łukasz Wójcik", want: "Offer_Letter_Łukasz_Wójcik.pdf"},
		{in: "", want: "Offer_Letter_Applicant.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Filename(tt.in), "input %q", tt.in)
	}
}
