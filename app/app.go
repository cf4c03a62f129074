package app

import (
	"database/sql"

	"github.com/go-chi/oauth"
	"github.com/mbolis/quick-form/config"
	"github.com/mbolis/quick-form/metrics"
	"github.com/mbolis/quick-form/service"
	"github.com/mbolis/quick-form/store"
)

// App is what request handlers share.
type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config

	Store       store.Store
	Forms       *service.Forms
	Submissions *service.Submissions
	Metrics     *metrics.Metrics
}

// New wires the services over s. db holds the author accounts and may be
// the same database as s.
func New(cfg config.Config, db *sql.DB, s store.Store, bearerServer *oauth.BearerServer) App {
	m := metrics.New()
	forms := service.NewForms(s, m)
	forms.CascadeDelete = cfg.CascadeDelete

	return App{
		DB:           db,
		BearerServer: bearerServer,
		Config:       cfg,
		Store:        s,
		Forms:        forms,
		Submissions:  service.NewSubmissions(s, forms, m),
		Metrics:      m,
	}
}
