package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/checkpay/internal/common"
	"github.com/dmitrijs2005/checkpay/internal/logging"
	"github.com/dmitrijs2005/checkpay/internal/server/models"
	"github.com/dmitrijs2005/checkpay/internal/server/services"
)

// createPaymentRequest uses pointers so absent fields are told apart from
// zero values. Owner fields sent by clients are ignored.
type createPaymentRequest struct {
	BusinessName     *string `json:"businessName"`
	QuantitySold     *int64  `json:"quantitySold"`
	CheckImageBase64 *string `json:"checkImageBase64"`
}

// paymentResponse is the public projection of a payment; the image is
// never echoed back.
type paymentResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	OwnerUsername string    `json:"ownerUsername"`
	BusinessName  string    `json:"businessName"`
	QuantitySold  int64     `json:"quantitySold"`
	Timestamp     time.Time `json:"timestamp"`
}

func toPaymentResponse(p *models.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID,
		UserID:        p.OwnerUsername,
		OwnerUsername: p.OwnerUsername,
		BusinessName:  p.BusinessName,
		QuantitySold:  p.QuantitySold,
		Timestamp:     p.CreatedAt.UTC(),
	}
}

func (r *Router) handleCreatePayment(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	username := getUsername(ctx)

	var body createPaymentRequest
	if !r.decodeJSON(w, req, &body) {
		return
	}
	if body.BusinessName == nil || body.QuantitySold == nil || body.CheckImageBase64 == nil {
		writeError(w, http.StatusBadRequest, "businessName, quantitySold and checkImageBase64 are required")
		return
	}

	p, err := r.payments.Create(ctx, username, services.NewPayment{
		BusinessName:     *body.BusinessName,
		QuantitySold:     *body.QuantitySold,
		CheckImageBase64: *body.CheckImageBase64,
	})
	if err != nil {
		r.writeServiceError(w, req, err, "Failed to save payment")
		return
	}

	logging.FromContext(ctx, r.logger).Info(ctx, "payment created", "payment_id", p.ID)
	writeJSON(w, http.StatusOK, toPaymentResponse(p))
}

func (r *Router) handleListPayments(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	username := getUsername(ctx)

	limit := 0
	if raw := req.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	items, err := r.payments.List(ctx, username, limit)
	if err != nil {
		r.writeServiceError(w, req, err, "Failed to fetch payments")
		return
	}

	out := make([]paymentResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPaymentResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (r *Router) writeServiceError(w http.ResponseWriter, req *http.Request, err error, internalMsg string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case common.IsAuthError(err):
		writeError(w, http.StatusUnauthorized, "Invalid token")
	default:
		logging.FromContext(req.Context(), r.logger).Error(req.Context(), internalMsg, "error", err)
		writeError(w, http.StatusInternalServerError, internalMsg)
	}
}
