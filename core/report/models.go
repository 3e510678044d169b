package report

import (
	"mime"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/ripoti/core"
)

// Report statuses, used for list filtering.
const (
	StatusAll      Status = "all"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var (
	ErrTitleAndFileRequired = core.NewValidationError(errors.New("Both project title and PDF file are required."))
	ErrNotPDF               = core.NewValidationError(errors.New("Please upload a valid PDF file."))
)

type Status string

// ParseStatus maps a raw query value to a Status; anything unknown is StatusAll.
func ParseStatus(s string) Status {
	switch st := Status(core.CleanString(s, true /* lower */)); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st
	default:
		return StatusAll
	}
}

// Report mirrors the remote API's report record. IsApproved and Rejected are
// mutually exclusive; RejectionReason is set iff Rejected;
// CertificateGenerated only ever holds for approved reports.
type Report struct {
	ID                   string    `json:"_id"`
	ProjectTitle         string    `json:"projectTitle"`
	StudentName          string    `json:"studentName"`
	StudentEmail         string    `json:"studentEmail,omitempty"`
	Department           string    `json:"department,omitempty"`
	SubmissionDate       time.Time `json:"submissionDate"`
	IsApproved           bool      `json:"isApproved"`
	Rejected             bool      `json:"rejected"`
	RejectionReason      string    `json:"rejectionReason,omitempty"`
	CertificateGenerated bool      `json:"certificateGenerated"`
}

func (r Report) Pending() bool { return !r.IsApproved && !r.Rejected }

// Moderation actions are offered only in the states below; elsewhere the UI
// must not offer them at all (not merely no-op them).
func (r Report) CanApprove() bool { return r.Pending() }
func (r Report) CanReject() bool  { return r.Pending() }
func (r Report) CanCertify() bool { return r.IsApproved && !r.CertificateGenerated }

func (r Report) StatusLabel() string {
	switch {
	case r.IsApproved:
		return "Approved"
	case r.Rejected:
		return "Rejected"
	default:
		return "Pending"
	}
}

// NewReport is a student submission: a project title plus the report PDF.
type NewReport struct {
	ProjectTitle string
	FileName     string
	ContentType  string
	Content      []byte
}

// Validate checks the submission before any network call is made.
func (nr *NewReport) Validate() error {
	nr.ProjectTitle = core.CleanString(nr.ProjectTitle)
	if nr.ProjectTitle == "" || len(nr.Content) == 0 {
		return ErrTitleAndFileRequired
	}
	mediaType, _, err := mime.ParseMediaType(nr.ContentType)
	if err != nil || mediaType != "application/pdf" {
		return ErrNotPDF
	}
	return nil
}

type QueryFilter struct {
	Search string
	Status Status
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	if qf.Status == "" {
		qf.Status = StatusAll
	}
}

func (qf QueryFilter) IsEmpty() bool {
	return qf.Search == "" && (qf.Status == "" || qf.Status == StatusAll)
}

func (qf QueryFilter) matches(r Report) bool {
	if qf.Search != "" {
		search := strings.ToLower(qf.Search)
		if !strings.Contains(strings.ToLower(r.ProjectTitle), search) &&
			!strings.Contains(strings.ToLower(r.StudentName), search) {
			return false
		}
	}
	switch qf.Status {
	case StatusPending:
		return r.Pending()
	case StatusApproved:
		return r.IsApproved
	case StatusRejected:
		return r.Rejected
	}
	return true
}

// Filter returns the reports matching qf, in order. The input snapshot is
// never mutated so clearing a filter always restores the full set.
func Filter(reports []Report, qf QueryFilter) []Report {
	qf.Clean()
	filtered := make([]Report, 0, len(reports))
	for _, r := range reports {
		if qf.matches(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Summary is the teacher dashboard's client-side reduction of the full
// report snapshot. Pending deliberately counts everything not yet approved,
// rejected reports included.
type Summary struct {
	Total    int
	Approved int
	Pending  int
}

func Summarize(reports []Report) Summary {
	s := Summary{Total: len(reports)}
	for _, r := range reports {
		if r.IsApproved {
			s.Approved++
		} else {
			s.Pending++
		}
	}
	return s
}

// Recent returns the first n reports of the snapshot; it is a slice of the
// last-fetched set, not a separate query.
func Recent(reports []Report, n int) []Report {
	if len(reports) < n {
		n = len(reports)
	}
	return reports[:n]
}

// DashboardStats are server-computed aggregates; the portal only renders them.
type DashboardStats struct {
	ActiveStudents   int           `json:"activeStudents"`
	ActiveTeachers   int           `json:"activeTeachers"`
	ReportsGenerated int           `json:"reportsGenerated"`
	PendingApprovals int           `json:"pendingApprovals"`
	MonthlyStats     []MonthlyStat `json:"monthlyStats"`
}

type MonthlyStat struct {
	Month   string `json:"month"`
	Total   int    `json:"total"`
	Pending int    `json:"pending"`
}
