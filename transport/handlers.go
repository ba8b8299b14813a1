package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-access-notifier/command"
	"github.com/goliatone/go-access-notifier/core"
	"github.com/goliatone/go-access-notifier/locks"
	"github.com/goliatone/go-access-notifier/query"
)

const maxWebhookBody = 1 << 20

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "request body could not be read")
		return
	}

	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}

	result, err := s.webhook.Process(r.Context(), core.InboundRequest{
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		status := result.StatusCode
		if status == 0 {
			status = statusFromError(err)
		}
		writeJSONError(w, status, core.MapError(err).Message)
		return
	}

	payload := map[string]any{"status": "ok"}
	for key, value := range result.Metadata {
		payload[key] = value
	}
	writeJSON(w, result.StatusCode, payload)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var recipients []core.Recipient
	if s.listRecipients != nil {
		listed, err := s.listRecipients.Query(r.Context(), query.ListRecipientsMessage{})
		if err != nil {
			s.logger.Error("recipient listing failed", "error", err)
			http.Error(w, "recipient listing failed", statusFromError(err))
			return
		}
		recipients = listed
	}
	renderDashboard(w, dashboardData{Recipients: recipients})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("q"))
	var events []core.EventRecord
	if s.listEvents != nil {
		listed, err := s.listEvents.Query(r.Context(), query.ListEventsMessage{
			Filter: core.EventFilter{Search: search},
		})
		if err != nil {
			s.logger.Error("event listing failed", "error", err)
			http.Error(w, "event listing failed", statusFromError(err))
			return
		}
		events = listed
	}
	renderEvents(w, eventsData{Search: search, Events: events})
}

func (s *Server) handleAddRecipient(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	name := strings.TrimSpace(r.PostFormValue("name"))
	phone := strings.TrimSpace(r.PostFormValue("phone"))
	if name == "" || phone == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if s.addRecipient != nil {
		msg := command.AddRecipientMessage{Recipient: core.Recipient{Name: name, Phone: phone}}
		if err := s.addRecipient.Execute(r.Context(), msg); err != nil {
			s.logger.Error("recipient add failed", "phone", phone, "error", err)
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDeleteRecipient(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	phone := strings.TrimSpace(r.PostFormValue("phone"))
	if phone == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if s.deleteRecipient != nil {
		if err := s.deleteRecipient.Execute(r.Context(), command.DeleteRecipientMessage{Phone: phone}); err != nil {
			s.logger.Error("recipient delete failed", "phone", phone, "error", err)
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLockdown(w http.ResponseWriter, r *http.Request) {
	if s.lockdown == nil {
		writeJSONError(w, http.StatusInternalServerError, "lockdown is not configured")
		return
	}
	_ = r.ParseForm()
	msg := command.LockdownMessage{Reason: strings.TrimSpace(r.PostFormValue("reason"))}
	if err := s.lockdown.Execute(r.Context(), msg); err != nil {
		s.logger.Error("lockdown failed", "error", err)
		writeJSONError(w, statusFromError(err), core.MapError(err).Message)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLockAction(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		lockID := strings.TrimSpace(r.PostFormValue("lock_id"))
		if lockID == "" {
			writeJSONError(w, http.StatusBadRequest, "lock_id is required")
			return
		}

		var err error
		switch action {
		case locks.ActionOpen:
			if s.openDoor == nil {
				err = transportInternal("transport: open command is not configured", nil)
			} else {
				err = s.openDoor.Execute(r.Context(), command.OpenDoorMessage{LockID: lockID})
			}
		case locks.ActionUnlock:
			if s.unlockDoor == nil {
				err = transportInternal("transport: unlock command is not configured", nil)
			} else {
				err = s.unlockDoor.Execute(r.Context(), command.UnlockDoorMessage{LockID: lockID})
			}
		case locks.ActionLock:
			if s.lockDoor == nil {
				err = transportInternal("transport: lock command is not configured", nil)
			} else {
				err = s.lockDoor.Execute(r.Context(), command.LockDoorMessage{LockID: lockID})
			}
		default:
			err = transportBadInput("unknown lock action", map[string]any{"action": action})
		}

		if err != nil {
			s.logger.Error("lock action failed", "action", action, "lock_id", lockID, "error", err)
			writeJSONError(w, statusFromError(err), core.MapError(err).Message)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if status <= 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
