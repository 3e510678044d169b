package reportapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/pkg/errors"

	"github.com/trezcool/ripoti/core/report"
	"github.com/trezcool/ripoti/core/user"
)

// Reports fetches every submitted report (admin/teacher moderation views).
func (c *Client) Reports(ctx context.Context, sess user.Session) ([]report.Report, error) {
	var reports []report.Report
	err := c.doJSON(ctx, http.MethodGet, "/reports", sess, nil, &reports)
	return reports, err
}

// MyReports fetches the reports of the authenticated student; scoping is
// server-side, derived from the bearer token.
func (c *Client) MyReports(ctx context.Context, sess user.Session) ([]report.Report, error) {
	var reports []report.Report
	err := c.doJSON(ctx, http.MethodGet, "/reports/my-reports", sess, nil, &reports)
	return reports, err
}

// SubmitReport uploads a new report as multipart form data
// (`projectTitle` field + `report` file part).
func (c *Client) SubmitReport(ctx context.Context, sess user.Session, nr report.NewReport) (report.Report, error) {
	var rep report.Report

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("projectTitle", nr.ProjectTitle); err != nil {
		return rep, errors.Wrap(err, "encoding projectTitle field")
	}
	part, err := form.CreatePart(fileHeader("report", nr.FileName, nr.ContentType))
	if err != nil {
		return rep, errors.Wrap(err, "creating report file part")
	}
	if _, err = part.Write(nr.Content); err != nil {
		return rep, errors.Wrap(err, "writing report file part")
	}
	if err = form.Close(); err != nil {
		return rep, errors.Wrap(err, "closing multipart form")
	}

	data, err := c.do(ctx, http.MethodPost, "/reports/submit-report", sess, form.FormDataContentType(), &buf)
	if err != nil {
		return rep, err
	}
	// the created record is echoed back; the response shape is server-owned,
	// so a missing or foreign body is not an error. callers re-fetch the list.
	_ = json.Unmarshal(data, &rep)
	return rep, nil
}

// Approve marks a pending report approved.
func (c *Client) Approve(ctx context.Context, sess user.Session, id string) error {
	return c.doJSON(ctx, http.MethodPut, "/reports/"+id+"/approve", sess, struct{}{}, nil)
}

// Reject marks a pending report rejected with the given reason.
func (c *Client) Reject(ctx context.Context, sess user.Session, id, reason string) error {
	payload := struct {
		Reason string `json:"reason"`
	}{Reason: reason}
	return c.doJSON(ctx, http.MethodPut, "/reports/"+id+"/reject", sess, payload, nil)
}

// DeleteReport removes a report record.
func (c *Client) DeleteReport(ctx context.Context, sess user.Session, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/reports/"+id, sess, nil, nil)
}

// Certificate asks the API to generate (and mail) the completion certificate
// for an approved report, returning the PDF bytes for download.
func (c *Client) Certificate(ctx context.Context, sess user.Session, id string) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "/reports/"+id+"/certificate", sess, "", nil)
}

// ReportPDF fetches the submitted report document itself.
func (c *Client) ReportPDF(ctx context.Context, sess user.Session, id string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/reports/"+id+"/pdf", sess, "", nil)
}

func fileHeader(field, filename, contentType string) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	return h
}
