package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/routinelab/routined/internal/api/respond"
	"github.com/routinelab/routined/internal/calendar"
	"github.com/routinelab/routined/internal/catalog"
	"github.com/routinelab/routined/internal/config"
	"github.com/routinelab/routined/internal/store"
)

// occurrenceView is one resolved occurrence plus its completion flag.
type occurrenceView struct {
	catalog.Event
	Done bool `json:"done"`
}

// GetDay returns the resolved occurrence list for a date with completion
// state, the regime highlight, and a progress summary.
// @Summary Day view
// @Tags routine
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/day/{date} [get]
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	t, err := calendar.ParseDate(date)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD")
		return
	}

	events := h.catalog.ResolveForDate(t)
	flags := h.completion.ForDate(date)

	occurrences := make([]occurrenceView, 0, len(events))
	done := 0
	for _, ev := range events {
		v := occurrenceView{Event: ev, Done: flags[ev.ID]}
		if v.Done {
			done++
		}
		occurrences = append(occurrences, v)
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"date":        date,
		"weekday":     calendar.WeekdayName(t),
		"occurrences": occurrences,
		"regime": map[string]interface{}{
			"items":      h.catalog.Regime(),
			"todayIndex": h.catalog.TodayRegimeIndex(t),
		},
		"progress": map[string]int{
			"done":  done,
			"total": len(occurrences),
		},
	})
}

// ToggleTask flips the completion flag for one occurrence.
// @Summary Toggle occurrence completion
// @Tags routine
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param taskID path string true "Occurrence id (e.g. pray_Fajr, sport, class_2)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/tasks/{date}/{taskID}/toggle [post]
func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	taskID := chi.URLParam(r, "taskID")
	if _, err := calendar.ParseDate(date); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD")
		return
	}
	if taskID == "" {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_TASK", "taskID is required")
		return
	}

	nowDone := h.completion.Toggle(r.Context(), date, taskID)
	h.engine.Poke()

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"date": date,
		"id":   taskID,
		"done": nowDone,
	})
}

// --------------------------------------------------------------------------
// Diet regime
// --------------------------------------------------------------------------

// GetRegime lists the diet regime.
// @Summary List regime items
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/regime [get]
func (h *Handler) GetRegime(w http.ResponseWriter, r *http.Request) {
	today := h.clock.Now()
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"items":      h.catalog.Regime(),
		"todayIndex": h.catalog.TodayRegimeIndex(today),
	})
}

// AddRegime appends a regime item.
// @Summary Add regime item
// @Tags catalog
// @Accept json
// @Produce json
// @Param body body object true "{\"item\": \"...\"}"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/regime [post]
func (h *Handler) AddRegime(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Item string `json:"item"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "body must be JSON with an item field")
		return
	}
	if err := h.catalog.AddRegimeItem(r.Context(), req.Item); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ITEM", err.Error())
		return
	}
	h.engine.Poke()
	respond.WriteJSONObject(w, http.StatusCreated, map[string]interface{}{"items": h.catalog.Regime()})
}

// RemoveRegime deletes the regime item at an index.
// @Summary Remove regime item
// @Tags catalog
// @Produce json
// @Param index path int true "List index"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/regime/{index} [delete]
func (h *Handler) RemoveRegime(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_INDEX", "index must be an integer")
		return
	}
	if err := h.catalog.RemoveRegimeItem(r.Context(), index); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_INDEX", err.Error())
		return
	}
	h.engine.Poke()
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"items": h.catalog.Regime()})
}

// --------------------------------------------------------------------------
// Study timetable
// --------------------------------------------------------------------------

// GetStudy lists the user study timetable.
// @Summary List study entries
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/study [get]
func (h *Handler) GetStudy(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"entries": h.catalog.StudyEntries(),
	})
}

// AddStudy appends a study timetable entry.
// @Summary Add study entry
// @Tags catalog
// @Accept json
// @Produce json
// @Param entry body catalog.StudyEntry true "Entry"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/study [post]
func (h *Handler) AddStudy(w http.ResponseWriter, r *http.Request) {
	var entry catalog.StudyEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "body must be a JSON study entry")
		return
	}
	if err := h.catalog.AddStudyEntry(r.Context(), entry); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ENTRY", err.Error())
		return
	}
	h.engine.Poke()
	respond.WriteJSONObject(w, http.StatusCreated, map[string]interface{}{"entries": h.catalog.StudyEntries()})
}

// RemoveStudy deletes the study entry at an index.
// @Summary Remove study entry
// @Tags catalog
// @Produce json
// @Param index path int true "List index"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/study/{index} [delete]
func (h *Handler) RemoveStudy(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_INDEX", "index must be an integer")
		return
	}
	if err := h.catalog.RemoveStudyEntry(r.Context(), index); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_INDEX", err.Error())
		return
	}
	h.engine.Poke()
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"entries": h.catalog.StudyEntries()})
}

// --------------------------------------------------------------------------
// View state: selected date, location
// --------------------------------------------------------------------------

// GetSelectedDate returns the stored selected date, defaulting to today.
// @Summary Get selected date
// @Tags view
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/date [get]
func (h *Handler) GetSelectedDate(w http.ResponseWriter, r *http.Request) {
	selected := calendar.DateString(h.clock.Now())
	store.LoadJSON(r.Context(), h.kv, config.KeySelectedDate, &selected, h.logger)
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"date": selected})
}

// PutSelectedDate stores the selected date.
// @Summary Set selected date
// @Tags view
// @Accept json
// @Produce json
// @Param body body object true "{\"date\": \"YYYY-MM-DD\"}"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/date [put]
func (h *Handler) PutSelectedDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "body must be JSON with a date field")
		return
	}
	if _, err := calendar.ParseDate(req.Date); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD")
		return
	}
	if err := store.SaveJSON(r.Context(), h.kv, config.KeySelectedDate, req.Date); err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "STORE_WRITE", "failed to persist selected date")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"date": req.Date})
}

// GetLocation returns the stored location.
// @Summary Get location
// @Tags view
// @Produce json
// @Success 200 {object} catalog.Location
// @Router /api/v1/location [get]
func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, h.catalog.Location())
}

// PutLocation stores the location.
// @Summary Set location
// @Tags view
// @Accept json
// @Produce json
// @Param location body catalog.Location true "Location"
// @Success 200 {object} catalog.Location
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/location [put]
func (h *Handler) PutLocation(w http.ResponseWriter, r *http.Request) {
	var loc catalog.Location
	if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "body must be a JSON location")
		return
	}
	if err := h.catalog.SetLocation(r.Context(), loc); err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "STORE_WRITE", "failed to persist location")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, h.catalog.Location())
}

// --------------------------------------------------------------------------
// Notifications
// --------------------------------------------------------------------------

// GetNotifications reports dispatcher and dedup status.
// @Summary Notification status
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/notifications [get]
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"permission":       string(h.sender.Permission()),
		"sentToday":        h.dedup.Count(),
		"lastRolloverDate": h.dedup.LastDate(),
	})
}

// Evaluate requests an immediate matcher pass.
// @Summary Trigger re-evaluation
// @Tags notifications
// @Produce json
// @Success 202 {object} map[string]interface{}
// @Router /api/v1/notifications/evaluate [post]
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	h.engine.Poke()
	respond.WriteJSONObject(w, http.StatusAccepted, map[string]interface{}{"status": "scheduled"})
}
