package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"boxoffice/internal/models"
	"boxoffice/internal/monitoring"
	"boxoffice/internal/services"
)

// PaymentWebhookRequest is the provider notification for a confirmed
// payment. Exactly one of Individual or Bundle describes what was
// bought.
type PaymentWebhookRequest struct {
	PaymentRef   string `json:"payment_ref"`
	Provider     string `json:"provider"`
	EventID      int    `json:"event_id"`
	SellerID     int    `json:"seller_id"`
	BuyerID      int    `json:"buyer_id"`
	GrossCents   int64  `json:"gross_cents"`
	ReferralCode string `json:"referral_code,omitempty"`

	Individual *struct {
		TicketTypeID int    `json:"ticket_type_id"`
		Quantity     int    `json:"quantity"`
		SeatLabel    string `json:"seat_label,omitempty"`
	} `json:"individual,omitempty"`

	Bundle *struct {
		Days []models.BundleDay `json:"days"`
	} `json:"bundle,omitempty"`
}

// PaymentWebhookResponse reports what the notification produced
type PaymentWebhookResponse struct {
	Transaction *models.PlatformTransaction `json:"transaction"`
	Tickets     []*models.Ticket            `json:"tickets,omitempty"`
	Bundle      *models.BundlePurchase      `json:"bundle,omitempty"`
}

// WebhookHandler turns confirmed payment notifications into recorded
// transactions and issued tickets. Providers redeliver; every step
// keys off the payment reference so replays return the original
// result.
type WebhookHandler struct {
	revenueService *services.RevenueService
	issuerService  *services.IssuerService
	metrics        *monitoring.Metrics
	logger         *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(
	revenueService *services.RevenueService,
	issuerService *services.IssuerService,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		revenueService: revenueService,
		issuerService:  issuerService,
		metrics:        metrics,
		logger:         logger,
	}
}

// HandlePaymentConfirmed processes POST /webhooks/payment
func (h *WebhookHandler) HandlePaymentConfirmed(w http.ResponseWriter, r *http.Request) {
	var req PaymentWebhookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	if (req.Individual == nil) == (req.Bundle == nil) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "exactly one of individual or bundle is required"})
		return
	}

	resp := PaymentWebhookResponse{}

	if req.Individual != nil {
		tickets, err := h.issuerService.IssueIndividualTickets(&services.IssueRequest{
			EventID:      req.EventID,
			TicketTypeID: req.Individual.TicketTypeID,
			Quantity:     req.Individual.Quantity,
			PurchaseRef:  req.PaymentRef,
			SeatLabel:    req.Individual.SeatLabel,
		})
		if err != nil {
			h.logger.Warn("individual issuance failed",
				zap.String("payment_ref", req.PaymentRef),
				zap.Error(err),
			)
			writeError(w, err)
			return
		}
		resp.Tickets = tickets
		h.metrics.TicketsIssued.WithLabelValues("individual").Add(float64(len(tickets)))
	} else {
		bundle, err := h.issuerService.IssueBundle(&models.BundleIssueRequest{
			EventID:     req.EventID,
			BuyerID:     req.BuyerID,
			PurchaseRef: req.PaymentRef,
			Days:        req.Bundle.Days,
		})
		if err != nil {
			h.logger.Warn("bundle issuance failed",
				zap.String("payment_ref", req.PaymentRef),
				zap.Error(err),
			)
			writeError(w, err)
			return
		}
		resp.Bundle = bundle
		h.metrics.TicketsIssued.WithLabelValues("bundle").Add(float64(len(bundle.TicketIDs)))
	}

	var ticketID *int
	if len(resp.Tickets) == 1 {
		ticketID = &resp.Tickets[0].ID
	}

	txn, err := h.revenueService.RecordTransaction(&models.TransactionCreateRequest{
		EventID:    req.EventID,
		SellerID:   req.SellerID,
		BuyerID:    req.BuyerID,
		TicketID:   ticketID,
		PaymentRef: req.PaymentRef,
		Provider:   req.Provider,
		GrossCents: req.GrossCents,
	})
	if err != nil {
		h.logger.Error("transaction recording failed after issuance",
			zap.String("payment_ref", req.PaymentRef),
			zap.Error(err),
		)
		writeError(w, err)
		return
	}
	resp.Transaction = txn
	h.metrics.PaymentVolume.WithLabelValues(req.Provider).Add(float64(req.GrossCents))

	if req.ReferralCode != "" {
		if _, err := h.revenueService.TrackAffiliateSale(req.ReferralCode, txn); err != nil {
			// A bad referral code never fails the sale
			h.logger.Warn("affiliate tracking skipped",
				zap.String("payment_ref", req.PaymentRef),
				zap.String("referral_code", req.ReferralCode),
				zap.Error(err),
			)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
