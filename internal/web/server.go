// Package web is the server-rendered frontend: CSV upload, result
// display and download, recent runs, and the upcoming-shows browser.
package web

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"

	"merch-forecast/internal/scratch"
	"merch-forecast/internal/tourdata"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Server holds the frontend's collaborators. tours is nil when no tour
// data feed is configured; the shows page then explains how to enable it.
type Server struct {
	client *Client
	store  *scratch.Store
	tours  *tourdata.Client
}

func NewServer(client *Client, store *scratch.Store, tours *tourdata.Client) *Server {
	return &Server{
		client: client,
		store:  store,
		tours:  tours,
	}
}

// Register loads the embedded templates and mounts the page routes.
func (s *Server) Register(r *gin.Engine) {
	tmpl := template.Must(template.ParseFS(templatesFS, "templates/*.tmpl"))
	r.SetHTMLTemplate(tmpl)

	r.GET("/", s.Index)
	r.POST("/predict", s.Predict)
	r.GET("/downloads/:id", s.Download)
	r.GET("/runs", s.Runs)
	r.GET("/shows", s.Shows)
}
