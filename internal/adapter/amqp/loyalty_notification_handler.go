package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/adapter/logger"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/interfaces"
)

type LoyaltyNotificationHandler struct {
	logger logger.Logger
}

func NewLoyaltyNotificationHandler(logger logger.Logger) *LoyaltyNotificationHandler {
	return &LoyaltyNotificationHandler{
		logger: logger,
	}
}

func (h *LoyaltyNotificationHandler) HandleNotification(ctx context.Context, body []byte) error {
	var msg interfaces.LoyaltyUpdateMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse loyalty update", "", nil, err)
		return err
	}

	h.logger.Info("loyalty_update_received",
		fmt.Sprintf("User %s earned %d and redeemed %d points", msg.UserID, msg.PointsEarned, msg.PointsRedeemed),
		msg.CheckoutID, map[string]interface{}{
			"tenant_id":        msg.TenantID,
			"user_id":          msg.UserID,
			"available_points": msg.AvailablePoints,
			"tier":             msg.Tier,
		})

	return nil
}
