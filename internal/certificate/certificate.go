// Package certificate issues course completion certificates.
package certificate

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/keytutor/internal/lessons"
	"github.com/verte-zerg/keytutor/internal/model"
	"github.com/verte-zerg/keytutor/internal/stats"
)

// CourseName is printed on every certificate.
const CourseName = "Touch Typing Course"

// Certificate errors.
var (
	ErrIncomplete = errors.New("course is not complete")
	ErrNoName     = errors.New("certificate name is required")
)

// Missing returns the typeable sub-lesson ids not yet completed, in catalog order.
func Missing(catalog *lessons.Catalog, completed map[string]bool) []string {
	var out []string
	for _, s := range catalog.Typeable() {
		if !completed[s.ID] {
			out = append(out, s.ID)
		}
	}
	return out
}

// CourseComplete reports whether every typeable sub-lesson is completed.
func CourseComplete(catalog *lessons.Catalog, completed map[string]bool) bool {
	return len(catalog.Typeable()) > 0 && len(Missing(catalog, completed)) == 0
}

// Issue builds a certificate for name from the learner's result summary.
func Issue(name string, summary stats.Summary, now time.Time) (model.Certificate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Certificate{}, ErrNoName
	}
	return model.Certificate{
		ID:              uuid.NewString(),
		UserName:        name,
		CourseName:      CourseName,
		CompletionDate:  now,
		AverageWPM:      summary.AvgWPM,
		AverageAccuracy: summary.AvgAccuracy,
		IssuedAt:        now,
	}, nil
}

// FileName returns the default HTML file name for c.
func FileName(c model.Certificate) string {
	return fmt.Sprintf("certificate-%s.html", c.CompletionDate.Format("2006-01-02"))
}

var page = template.Must(template.New("certificate").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.CourseName}} - {{.UserName}}</title>
<style>
body { font-family: Arial, sans-serif; }
.outer { width: 800px; height: 600px; margin: 20px auto; padding: 20px; text-align: center; border: 10px solid #787878; position: relative; }
.inner { height: 550px; padding: 20px; border: 5px solid #787878; }
.title { font-size: 50px; font-weight: bold; color: #3a86ff; }
.lead { font-size: 25px; font-style: italic; }
.name { font-size: 30px; font-weight: bold; }
.course { font-size: 30px; }
.score { font-size: 20px; }
.date { font-size: 25px; }
.id { position: absolute; bottom: 30px; left: 50px; font-size: 12px; color: #787878; }
</style>
</head>
<body>
<div class="outer">
<div class="inner">
<p class="title">Certificate of Completion</p>
<p class="lead">This is to certify that</p>
<p class="name">{{.UserName}}</p>
<p class="lead">has successfully completed the</p>
<p class="course">{{.CourseName}}</p>
<p class="score">with an average typing speed of <b>{{.AverageWPM}} WPM</b> and accuracy of <b>{{.AverageAccuracy}}%</b></p>
<p class="date">{{.Date}}</p>
</div>
<div class="id">Certificate {{.ID}}</div>
</div>
</body>
</html>
`))

type pageData struct {
	model.Certificate
	Date string
}

// RenderHTML writes a printable certificate page.
func RenderHTML(w io.Writer, c model.Certificate) error {
	data := pageData{Certificate: c, Date: c.CompletionDate.Format("January 2, 2006")}
	if err := page.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render certificate: %w", err)
	}
	return nil
}
