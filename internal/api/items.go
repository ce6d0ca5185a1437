package api

import (
	"net/http"

	"shareit/internal/dto"
	"shareit/internal/models"
)

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	var req dto.ItemCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	item, err := s.svc.Items.Create(r.Context(), userID, req.ToModel())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToItemDto(item))
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	var req dto.ItemUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	item, err := s.svc.Items.Update(r.Context(), userID, itemID, req.Patch())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToItemDto(item))
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	details, err := s.svc.Items.GetOne(r.Context(), userID, itemID)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToItemDetailsDto(details))
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	page, err := pageParams(r, models.DefaultPageSize)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	details, err := s.svc.Items.ListForOwner(r.Context(), userID, page)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToItemDetailsDtos(details))
}

func (s *Server) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r, models.DefaultPageSize)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	items, err := s.svc.Items.Search(r.Context(), r.URL.Query().Get("text"), page)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToItemDtos(items))
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	var req dto.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	comment, err := s.svc.Items.AddComment(r.Context(), userID, itemID, req.Text)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToCommentDto(comment))
}
