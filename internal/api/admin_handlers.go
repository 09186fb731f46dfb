package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vrsandeep/cropduster/internal/models"
	"github.com/vrsandeep/cropduster/internal/store"
)

func (s *Server) handleRunAdminJob(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		JobName string `json:"job_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	err := s.app.JobManager().RunJob(payload.JobName, s.app)
	if err != nil {
		RespondWithError(w, http.StatusConflict, err.Error()) // 409 Conflict if a job is already running
		return
	}

	RespondWithJSON(w, http.StatusAccepted, map[string]string{
		"message": "Job '" + payload.JobName + "' started successfully.",
	})
}

func (s *Server) handleGetAdminJobsStatus(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.app.JobManager().GetStatus())
}

func (s *Server) handleListSizeSets(w http.ResponseWriter, r *http.Request) {
	sets, err := s.store.ListSizeSets()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve size sets")
		return
	}
	RespondWithJSON(w, http.StatusOK, sets)
}

// handleSaveSizeSet creates or replaces the size set named by the URL slug.
func (s *Server) handleSaveSizeSet(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name  string         `json:"name"`
		Sizes []*models.Size `json:"sizes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	slug := chi.URLParam(r, "slug")
	if payload.Name == "" {
		payload.Name = slug
	}
	ss := &models.SizeSet{Name: payload.Name, Slug: slug, Sizes: payload.Sizes}
	if err := ss.Validate(); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, size := range ss.Sizes {
		if size.Name == "" {
			size.Name = size.Slug
		}
	}

	ss, err := s.store.SaveSizeSet(ss)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to save size set")
		return
	}
	RespondWithJSON(w, http.StatusOK, ss)
}

// lookupSizeSet resolves an optional slug. An empty slug is not an error.
func (s *Server) lookupSizeSet(slug string) (*models.SizeSet, bool, error) {
	if slug == "" {
		return nil, true, nil
	}
	ss, err := s.store.GetSizeSetBySlug(slug)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return ss, true, nil
}
