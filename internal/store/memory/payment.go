package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	paymentdomain "github.com/tair/fashion-checkout/internal/payment/domain"
	"github.com/tair/fashion-checkout/pkg/apperror"
)

type paymentRepo struct {
	sess *session
}

func newestFirst(payments []paymentdomain.Payment) {
	sort.Slice(payments, func(i, j int) bool {
		if !payments[i].CreatedAt.Equal(payments[j].CreatedAt) {
			return payments[i].CreatedAt.After(payments[j].CreatedAt)
		}
		return payments[i].ID > payments[j].ID
	})
}

func (r *paymentRepo) Create(ctx context.Context, payment *paymentdomain.Payment) error {
	defer r.sess.lock()()
	payment.ID = r.sess.nextID()
	now := r.sess.s.now()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now
	stored := *payment
	r.sess.s.payments[stored.ID] = &stored
	r.sess.onRollback(func() { delete(r.sess.s.payments, stored.ID) })
	return nil
}

func (r *paymentRepo) FindByID(ctx context.Context, id uint) (*paymentdomain.Payment, error) {
	defer r.sess.lock()()
	p, ok := r.sess.s.payments[id]
	if !ok {
		return nil, apperror.NotFound("payment %d not found", id)
	}
	out := *p
	return &out, nil
}

func (r *paymentRepo) FindByIDForUpdate(ctx context.Context, id uint) (*paymentdomain.Payment, error) {
	return r.FindByID(ctx, id)
}

func (r *paymentRepo) FindByOrderID(ctx context.Context, orderID uint) ([]paymentdomain.Payment, error) {
	return r.collect(func(p *paymentdomain.Payment) bool { return p.OrderID == orderID }), nil
}

func (r *paymentRepo) FindByOrderAndTransactionID(ctx context.Context, orderID uint, transactionID string) (*paymentdomain.Payment, error) {
	defer r.sess.lock()()
	for _, p := range r.sess.s.payments {
		if p.OrderID == orderID && transactionID != "" && p.TransactionID == transactionID {
			out := *p
			return &out, nil
		}
	}
	return nil, apperror.NotFound("payment with transaction %s not found for order %d", transactionID, orderID)
}

func (r *paymentRepo) FindAll(ctx context.Context, status paymentdomain.Status, limit, offset int) ([]paymentdomain.Payment, int64, error) {
	all := r.collect(func(p *paymentdomain.Payment) bool { return status == "" || p.Status == status })
	return page(all, limit, offset), int64(len(all)), nil
}

func (r *paymentRepo) FindByCustomerID(ctx context.Context, customerID uint, limit, offset int) ([]paymentdomain.Payment, int64, error) {
	all := r.collect(func(p *paymentdomain.Payment) bool {
		o, ok := r.sess.s.orders[p.OrderID]
		return ok && o.CustomerID == customerID
	})
	return page(all, limit, offset), int64(len(all)), nil
}

func (r *paymentRepo) collect(keep func(p *paymentdomain.Payment) bool) []paymentdomain.Payment {
	defer r.sess.lock()()
	out := []paymentdomain.Payment{}
	for _, p := range r.sess.s.payments {
		if keep(p) {
			out = append(out, *p)
		}
	}
	newestFirst(out)
	return out
}

func (r *paymentRepo) ListAfter(ctx context.Context, afterID uint, limit int) ([]paymentdomain.Payment, error) {
	defer r.sess.lock()()
	var out []paymentdomain.Payment
	for _, p := range r.sess.s.payments {
		if p.ID > afterID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, 0), nil
}

func (r *paymentRepo) Update(ctx context.Context, payment *paymentdomain.Payment) error {
	defer r.sess.lock()()
	stored, ok := r.sess.s.payments[payment.ID]
	if !ok {
		return apperror.NotFound("payment %d not found", payment.ID)
	}
	previous := *stored

	payment.UpdatedAt = r.sess.s.now()
	stored.Status = payment.Status
	stored.TransactionID = payment.TransactionID
	stored.BankCode = payment.BankCode
	stored.ResponseCode = payment.ResponseCode
	stored.PaymentInfo = payment.PaymentInfo
	stored.CompletedAt = payment.CompletedAt
	stored.UpdatedAt = payment.UpdatedAt

	r.sess.onRollback(func() { *stored = previous })
	return nil
}

func (r *paymentRepo) Statistics(ctx context.Context) (*paymentdomain.Statistics, error) {
	defer r.sess.lock()()
	stats := &paymentdomain.Statistics{CompletedAmount: decimal.Zero}
	for _, p := range r.sess.s.payments {
		stats.Total++
		switch p.Status {
		case paymentdomain.StatusCompleted:
			stats.Completed++
			stats.CompletedAmount = stats.CompletedAmount.Add(p.Amount)
		case paymentdomain.StatusPending:
			stats.Pending++
		case paymentdomain.StatusFailed:
			stats.Failed++
		case paymentdomain.StatusRefunded:
			stats.Refunded++
		case paymentdomain.StatusCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

func (r *paymentRepo) CreateTransaction(ctx context.Context, tx *paymentdomain.PaymentTransaction) error {
	defer r.sess.lock()()
	tx.ID = r.sess.nextID()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = r.sess.s.now()
	}
	r.sess.s.transactions = append(r.sess.s.transactions, *tx)
	n := len(r.sess.s.transactions) - 1
	r.sess.onRollback(func() { r.sess.s.transactions = r.sess.s.transactions[:n] })
	return nil
}

func (r *paymentRepo) FindTransactionsByOrderID(ctx context.Context, orderID uint) ([]paymentdomain.PaymentTransaction, error) {
	defer r.sess.lock()()
	out := []paymentdomain.PaymentTransaction{}
	for _, tx := range r.sess.s.transactions {
		if tx.OrderID == orderID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
