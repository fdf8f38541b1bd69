package ui

import (
	"bytes"
	"errors"
	"html/template"
	"mime/multipart"
	"net/http"

	"adimpact/adapters/excel"
	"adimpact/app"
	"adimpact/domain/core"
	apperrors "adimpact/internal/errors"
	"adimpact/internal/logging"
	"adimpact/internal/report"

	"github.com/gin-gonic/gin"
)

// Form fields of the upload form.
const (
	fieldAds    = "ads"
	fieldSales  = "sales"
	fieldFormat = "format"
)

const uploadPrompt = "Upload both files to get started."

// pageData feeds templates/index.html.
type pageData struct {
	Title  string
	Info   string
	Error  string
	Report template.HTML
}

func (s *Server) handleIndex(c *gin.Context) {
	s.renderPage(c, http.StatusOK, pageData{Info: uploadPrompt})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReport(c *gin.Context) {
	ads, adsName, err := readUpload(c, fieldAds)
	if err != nil {
		s.renderUploadError(c, err)
		return
	}
	sales, salesName, err := readUpload(c, fieldSales)
	if err != nil {
		s.renderUploadError(c, err)
		return
	}
	if ads == nil || sales == nil {
		s.renderPage(c, http.StatusBadRequest, pageData{Info: uploadPrompt})
		return
	}

	r, err := s.service.Generate(c.Request.Context(), app.ReportInput{
		Engagement:     ads,
		Sales:          sales,
		EngagementName: adsName,
		SalesName:      salesName,
	})
	if err != nil {
		s.renderUploadError(c, err)
		return
	}

	switch c.PostForm(fieldFormat) {
	case report.FormatJSON:
		out, err := report.JSON(r)
		if err != nil {
			s.renderUploadError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", out)
	case report.FormatMarkdown:
		c.Header("Content-Disposition", `attachment; filename="ad-impact-report.md"`)
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(r)))
	default:
		s.renderPage(c, http.StatusOK, pageData{Report: template.HTML(report.HTML(r, false))})
	}
}

// readUpload parses one uploaded export. A field left empty yields a nil
// table and no error.
func readUpload(c *gin.Context, field string) (*excel.Table, string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, "", nil
		}
		return nil, "", err
	}

	fileType, err := excel.FileTypeFromName(header.Filename)
	if err != nil {
		return nil, "", apperrors.Wrapf(err, "%s upload %s", field, header.Filename)
	}

	table, err := openUpload(header, fileType)
	if err != nil {
		return nil, "", apperrors.Wrapf(err, "%s upload %s", field, header.Filename)
	}
	return table, header.Filename, nil
}

func openUpload(header *multipart.FileHeader, fileType string) (*excel.Table, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return excel.ReadFrom(f, fileType)
}

func (s *Server) renderUploadError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	case core.IsMissingColumnError(err):
		status = http.StatusUnprocessableEntity
	case core.IsInputError(err):
		status = http.StatusBadRequest
	default:
		switch apperrors.GetCode(err) {
		case apperrors.CodeInvalidInput, apperrors.CodeReadFailed:
			status = http.StatusBadRequest
		}
	}

	logging.Warn().Err(err).Int("status", status).Msg("report request failed")
	s.renderPage(c, status, pageData{Error: err.Error()})
}

func (s *Server) renderPage(c *gin.Context, status int, data pageData) {
	data.Title = report.Title

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		logging.Error().Err(err).Msg("template rendering failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "template rendering failed"})
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
