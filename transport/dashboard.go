package transport

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/goliatone/go-access-notifier/core"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("pages").Funcs(template.FuncMap{
	"payload": func(payload map[string]any) string {
		if len(payload) == 0 {
			return "{}"
		}
		encoded, err := json.Marshal(payload)
		if err != nil {
			return "{}"
		}
		return string(encoded)
	},
	"stamp": func(at time.Time) string {
		if at.IsZero() {
			return ""
		}
		return at.UTC().Format(time.RFC3339)
	},
}).ParseFS(templateFS, "templates/*.html"))

type dashboardData struct {
	Recipients []core.Recipient
}

type eventsData struct {
	Search string
	Events []core.EventRecord
}

func renderDashboard(w http.ResponseWriter, data dashboardData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		http.Error(w, "dashboard rendering failed", http.StatusInternalServerError)
	}
}

func renderEvents(w http.ResponseWriter, data eventsData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, "events.html", data); err != nil {
		http.Error(w, "event log rendering failed", http.StatusInternalServerError)
	}
}
