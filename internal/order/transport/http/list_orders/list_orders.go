package listorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/microshop/internal/order/service/models/order"
	"github.com/corray333/backend-labs/microshop/pkg/http/render"
)

type service interface {
	ListOrders(ctx context.Context) ([]order.Order, error)
}

func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	orders, err := service.ListOrders(r.Context())
	if err != nil {
		render.Error(w, r, http.StatusInternalServerError, "Error fetching orders")
		slog.ErrorContext(r.Context(), "Error getting orders", "error", err)

		return
	}

	render.JSON(w, r, http.StatusOK, orders)
}
