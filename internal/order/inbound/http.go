package inbound

import (
	"github.com/shandysiswandi/ordernotify/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/send-order-email", end.SendOrderEmail)
}
