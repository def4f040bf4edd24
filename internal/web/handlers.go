package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"merch-forecast/internal/csvio"
	"merch-forecast/internal/domain"
	"merch-forecast/internal/dto"
	"merch-forecast/internal/scratch"
	"merch-forecast/internal/tourdata"
)

const (
	previewRows  = 5
	displayRows  = 50
	recentRuns   = 25
	probeTimeout = 2 * time.Second
)

// tableView is the slice of a table a template actually renders.
type tableView struct {
	Columns []string
	Rows    []domain.Row
	Total   int
}

func viewOf(t *domain.Table, limit int) *tableView {
	rows := t.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return &tableView{Columns: t.Columns, Rows: rows, Total: t.Len()}
}

type indexData struct {
	Active    string
	APIStatus string
	Info      *dto.ModelInfoResponse
}

type resultData struct {
	Active         string
	Filename       string
	Error          string
	MissingColumns []string
	Preview        *tableView
	Result         *tableView
	Download       *scratch.Entry
	RecordCount    int
}

type runsData struct {
	Active  string
	Entries []scratch.Entry
}

type showsData struct {
	Active  string
	Enabled bool
	Error   string
	Shows   []tourdata.Show
	Genres  []string
	Genre   string
	Band    string
	From    string
	To      string
}

// Index renders the upload form with a live API status badge, probed
// with a short timeout so a down API never stalls the page.
func (s *Server) Index(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	data := indexData{Active: "home"}

	health, err := s.client.Health(ctx)
	switch {
	case err != nil:
		data.APIStatus = "unreachable"
	case health.Status == "ok":
		data.APIStatus = "ok"
	default:
		data.APIStatus = "degraded"
	}

	if data.APIStatus == "ok" {
		if info, err := s.client.ModelInfo(ctx); err == nil {
			data.Info = info
		}
	}

	c.HTML(http.StatusOK, "index.tmpl", data)
}

// Predict handles the multipart CSV upload: decode, forward to the API,
// stage the result for download, and render both tables.
func (s *Server) Predict(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		s.renderUploadError(c, http.StatusBadRequest, "choose a CSV file to upload", nil, nil)
		return
	}
	defer file.Close()

	input, err := csvio.Read(file)
	if err != nil {
		s.renderUploadError(c, http.StatusBadRequest,
			fmt.Sprintf("could not read %s: %v", header.Filename, err), nil, nil)
		return
	}

	resp, err := s.client.Predict(c.Request.Context(), input)
	if err != nil {
		var apiErr *APIError
		switch {
		case errors.As(err, &apiErr):
			s.renderUploadError(c, http.StatusBadRequest, apiErr.Message, apiErr.MissingColumns, input)
		case errors.Is(err, domain.ErrUpstreamDown):
			s.renderUploadError(c, http.StatusBadGateway,
				"the prediction service is unreachable right now, try again shortly", nil, input)
		default:
			log.WithError(err).Error("predict upload failed")
			s.renderUploadError(c, http.StatusInternalServerError, "internal error", nil, input)
		}
		return
	}

	result := dto.TableFromResponse(resp)

	entry, err := s.store.Put(c.Request.Context(), resultFilename(header.Filename), result)
	if err != nil {
		// The prediction still renders; only the download link is lost.
		log.WithError(err).Error("stage result file")
		entry = nil
	}

	c.HTML(http.StatusOK, "result.tmpl", resultData{
		Active:      "home",
		Filename:    header.Filename,
		Preview:     viewOf(input, previewRows),
		Result:      viewOf(result, displayRows),
		Download:    entry,
		RecordCount: resp.RecordCount,
	})
}

// Download streams a staged result file as an attachment.
func (s *Server) Download(c *gin.Context) {
	entry, rc, err := s.store.Open(c.Request.Context(), c.Param("id"))
	if errors.Is(err, scratch.ErrNotFound) {
		c.String(http.StatusNotFound, "result not found")
		return
	}
	if err != nil {
		log.WithError(err).Error("open staged result")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", entry.Filename))
	if _, err := io.Copy(c.Writer, rc); err != nil {
		log.WithError(err).Warn("stream staged result")
	}
}

// Runs lists recently staged results.
func (s *Server) Runs(c *gin.Context) {
	entries, err := s.store.Recent(c.Request.Context(), recentRuns)
	if err != nil {
		log.WithError(err).Error("list staged results")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	c.HTML(http.StatusOK, "runs.tmpl", runsData{Active: "runs", Entries: entries})
}

// Shows renders the upcoming-shows browser with genre, band, and date
// filters.
func (s *Server) Shows(c *gin.Context) {
	data := showsData{
		Active: "shows",
		Genre:  c.Query("genre"),
		Band:   c.Query("band"),
		From:   c.Query("from"),
		To:     c.Query("to"),
	}

	if s.tours == nil {
		c.HTML(http.StatusServiceUnavailable, "shows.tmpl", data)
		return
	}
	data.Enabled = true

	shows, err := s.tours.Shows(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("load tour data")
		data.Error = "could not load tour data"
		c.HTML(http.StatusBadGateway, "shows.tmpl", data)
		return
	}

	filter := tourdata.Filter{Genre: data.Genre, Band: data.Band}
	if d, err := time.Parse("2006-01-02", data.From); err == nil {
		filter.From = d
	}
	if d, err := time.Parse("2006-01-02", data.To); err == nil {
		filter.To = d
	}

	filtered := tourdata.FilterShows(shows, filter)
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Date.Before(filtered[j].Date) })

	data.Shows = filtered
	data.Genres = tourdata.Genres(shows)
	c.HTML(http.StatusOK, "shows.tmpl", data)
}

func (s *Server) renderUploadError(c *gin.Context, status int, message string, missing []string, input *domain.Table) {
	data := resultData{
		Active:         "home",
		Error:          message,
		MissingColumns: missing,
	}
	if input != nil {
		data.Preview = viewOf(input, previewRows)
	}
	c.HTML(status, "result.tmpl", data)
}

func resultFilename(uploadName string) string {
	base := strings.TrimSuffix(filepath.Base(uploadName), filepath.Ext(uploadName))
	if base == "" {
		base = "result"
	}
	return fmt.Sprintf("%s_predictions_%s.csv", base, time.Now().Format("20060102-150405"))
}
