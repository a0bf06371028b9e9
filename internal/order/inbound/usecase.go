package inbound

import (
	"context"

	"github.com/shandysiswandi/ordernotify/internal/order/usecase"
)

type uc interface {
	Notify(ctx context.Context, in usecase.NotifyInput) (*usecase.NotifyOutput, error)
}
