// internal/handlers/payment.go
package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/toolhatch-backend/internal/services"
	"github.com/javajoker/toolhatch-backend/internal/utils"
)

const (
	signatureHeader = "x-nowpayments-sig"
	maxCallbackBody = 64 << 10
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	callbackQueue  *services.CallbackQueue
}

func NewPaymentHandler(paymentService *services.PaymentService, callbackQueue *services.CallbackQueue) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		callbackQueue:  callbackQueue,
	}
}

// POST /api/create-payment
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req services.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	response, err := h.paymentService.CreatePayment(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, response)
}

// POST /api/check-payment-status/:orderId
func (h *PaymentHandler) CheckPaymentStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}

	status, err := h.paymentService.CheckPaymentStatus(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"status": status})
}

// POST /api/payment-callback
// The order update runs on the callback queue; the gateway only learns
// whether the notification was accepted.
func (h *PaymentHandler) PaymentCallback(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxCallbackBody))
	if err != nil {
		utils.BadRequestResponse(c, "Unreadable callback body", nil)
		return
	}

	event, err := h.paymentService.VerifyCallback(body, c.GetHeader(signatureHeader))
	if err != nil {
		logrus.WithError(err).WithField("request_id", utils.GetRequestIDFromContext(c)).Warn("Rejected payment callback")
		respondError(c, err)
		return
	}

	if err := h.callbackQueue.Enqueue(*event); err != nil {
		respondError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"order_id":       event.OrderID,
		"payment_status": event.PaymentStatus,
	}).Info("Payment callback accepted")
	utils.SuccessResponse(c, gin.H{"received": true})
}
