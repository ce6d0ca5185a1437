package api

import (
	"net/http"

	"shareit/internal/dto"
)

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.UserCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	user, err := s.svc.Users.Create(r.Context(), req.ToModel())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserDto(user))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Users.List(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserDtos(users))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	user, err := s.svc.Users.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserDto(user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	var req dto.UserUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	user, err := s.svc.Users.Update(r.Context(), id, req.Patch())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserDto(user))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	if err := s.svc.Users.Delete(r.Context(), id); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
