package query

import (
	"context"

	"github.com/tair/fashion-checkout/internal/payment/domain"
)

type StatisticsHandler struct {
	repo domain.PaymentRepository
}

func NewStatisticsHandler(repo domain.PaymentRepository) *StatisticsHandler {
	return &StatisticsHandler{repo: repo}
}

func (h *StatisticsHandler) Handle(ctx context.Context) (*domain.Statistics, error) {
	return h.repo.Statistics(ctx)
}
