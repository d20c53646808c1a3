package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"primestore/internal/orders"
	"primestore/internal/stores/kafka"
	"primestore/pkg/ctxmanage"
	"primestore/pkg/logkey"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v81"
)

// Webhook receives payment events from Stripe and advances the matching
// order from pending to paid.
func (h *Handler) Webhook(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	var event stripe.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		slog.Error("failed to bind webhook event", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid event payload"})
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var paymentIntent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &paymentIntent); err != nil {
			slog.Error("failed to unmarshal payment intent", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid event payload"})
			return
		}

		orderID, err := h.o.UpdateOrderByPaymentIntent(c.Request.Context(), paymentIntent.ID, orders.StatusPaid)
		if err != nil {
			if errors.Is(err, orders.ErrOrderNotFound) {
				// Either the webhook beat the order creation or this is a replay;
				// acknowledge so Stripe stops retrying.
				slog.Warn("no pending order for payment intent", slog.String(logkey.TraceID, traceId),
					slog.String("PaymentIntentID", paymentIntent.ID))
				c.Status(http.StatusOK)
				return
			}
			slog.Error("failed to update order", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to update order"})
			return
		}

		slog.Info("order marked paid", slog.String(logkey.TraceID, traceId),
			slog.String("OrderID", orderID), slog.String("PaymentIntentID", paymentIntent.ID))

		if h.k != nil {
			items, err := h.o.GetOrderItems(c.Request.Context(), orderID)
			if err != nil {
				slog.Error("failed to fetch order items for events", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			} else {
				go h.publishOrderPaidEvents(orderID, items)
			}
		}

		c.Status(http.StatusOK)

	default:
		slog.Info("unhandled event type", slog.String(logkey.TraceID, traceId), slog.String("event_type", string(event.Type)))
		c.JSON(http.StatusOK, gin.H{"message": "Event type not handled", "event": event.Type})
	}
}

func (h *Handler) publishOrderPaidEvents(orderID string, items []orders.OrderItem) {
	for _, item := range items {
		jsonData, err := json.Marshal(kafka.OrderPaidEvent{
			OrderId:   orderID,
			ProductId: item.ProductID,
			Quantity:  item.Quantity,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			slog.Error("failed to marshal order paid event", slog.String(logkey.ERROR, err.Error()))
			return
		}
		if err := h.k.ProduceMessage(kafka.TopicOrderPaid, []byte(orderID), jsonData); err != nil {
			slog.Error("failed to produce order paid event", slog.String(logkey.ERROR, err.Error()))
			return
		}
	}
}
