package handlers

import (
	"errors"
	"net/http"

	"service-delivery-go/internal/apperr"
	"service-delivery-go/internal/domain"
	"service-delivery-go/internal/logx"
)

// DeliveryHandler handles the delivery orchestration endpoints.
type DeliveryHandler struct {
	usecase deliveryUsecase
	logger  logx.Logger
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(logger logx.Logger, uc deliveryUsecase) *DeliveryHandler {
	return &DeliveryHandler{usecase: uc, logger: logger}
}

// PlaceDeliveryRequest handles POST /place_delivery_request.
func (h *DeliveryHandler) PlaceDeliveryRequest(w http.ResponseWriter, r *http.Request) {
	var req placeDeliveryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	ord, err := h.usecase.PlaceDeliveryRequest(r.Context(), placeRequestToDomain(req))
	switch {
	case err == nil:
		writeData(h.logger, w, r, http.StatusCreated, orderToResponse(ord))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid request")
	case errors.Is(err, apperr.ErrBrokerUnavailable):
		writeError(h.logger, w, r, http.StatusServiceUnavailable, "notification broker unavailable")
	case errors.Is(err, apperr.ErrAssignmentFailed):
		h.logInternal(r, "place delivery request failed", err)
		writeError(h.logger, w, r, http.StatusInternalServerError, "driver assignment failed")
	case errors.Is(err, apperr.ErrUpstreamUnavailable):
		h.logInternal(r, "place delivery request failed", err)
		writeError(h.logger, w, r, http.StatusInternalServerError, "upstream service unavailable")
	default:
		h.logInternal(r, "place delivery request failed", err)
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// UpdateDeliveryStatus handles POST /update_delivery_status.
func (h *DeliveryHandler) UpdateDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	var req updateDeliveryStatusRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	err := h.usecase.UpdateDeliveryStatus(r.Context(), req.DeliveryID, domain.DeliveryStatus(req.DeliveryStatus))
	switch {
	case err == nil:
		writeMessage(h.logger, w, r, http.StatusOK, "delivery status published")
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid request")
	case errors.Is(err, apperr.ErrBrokerUnavailable):
		writeError(h.logger, w, r, http.StatusServiceUnavailable, "notification broker unavailable")
	default:
		h.logInternal(r, "update delivery status failed", err)
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// logInternal records the diagnostic detail that is deliberately kept out of
// the response body.
func (h *DeliveryHandler) logInternal(r *http.Request, msg string, err error) {
	h.logger.Error(msg,
		logx.String("req_id", reqID(r.Context())),
		logx.Err(err),
	)
}
