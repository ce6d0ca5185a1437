package api

import (
	"net/http"

	"shareit/internal/dto"
	"shareit/internal/models"
)

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	var req dto.ItemRequestCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	created, err := s.svc.Requests.Create(r.Context(), userID, req.Description)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToItemRequestDto(created))
}

func (s *Server) handleListOwnRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	reqs, err := s.svc.Requests.ListOwn(r.Context(), userID)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToItemRequestDtos(reqs))
}

func (s *Server) handleListOtherRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	page, err := pageParams(r, models.DefaultRequestsPageSize)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	reqs, err := s.svc.Requests.ListOthers(r.Context(), userID, page)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToItemRequestDtos(reqs))
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	requestID, err := pathID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	req, err := s.svc.Requests.Get(r.Context(), userID, requestID)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToItemRequestDto(req))
}
