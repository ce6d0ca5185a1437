package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"shareit/internal/domain"
	"shareit/internal/dto"
	"shareit/internal/export"
	"shareit/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	var req dto.BookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	booking, err := s.svc.Bookings.Create(r.Context(), userID, req.Input())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToBookingDto(booking))
}

func (s *Server) handleChangeBookingStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		writeServiceError(w, s.logger, domain.InvalidRequestf("approved must be true or false"))
		return
	}

	booking, err := s.svc.Bookings.ChangeStatus(r.Context(), userID, bookingID, approved)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToBookingDto(booking))
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	booking, err := s.svc.Bookings.GetInfo(r.Context(), userID, bookingID)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToBookingDto(booking))
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
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

	bookings, err := s.svc.Bookings.ListByBooker(r.Context(), userID, stateParam(r), page)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToBookingDtos(bookings))
}

func (s *Server) handleListOwnerBookings(w http.ResponseWriter, r *http.Request) {
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

	bookings, err := s.svc.Bookings.ListByOwner(r.Context(), userID, stateParam(r), page)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToBookingDtos(bookings))
}

// handleExportOwnerBookings renders into memory first so that a failure still gets a JSON error.
func (s *Server) handleExportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	state := stateParam(r)

	var buf bytes.Buffer
	if err := s.svc.Bookings.ExportForOwner(r.Context(), userID, state, &buf); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(state, s.now())))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
