// Package service holds multi-step business flows that span the store and
// external sinks.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chalets-du-lac/api/internal/consumption"
	"github.com/chalets-du-lac/api/internal/mailer"
	"github.com/chalets-du-lac/api/internal/model"
)

// Errors returned by the closing service.
var (
	ErrMailUnavailable = errors.New("mail is not available")
	ErrChaletNotBooked = errors.New("chalet is not occupied")
)

// ClosingStore defines the store methods the closing flow needs.
// Satisfied by *store.Store; narrow interface for testability.
type ClosingStore interface {
	GetChalet(ctx context.Context, number string) (model.Chalet, error)
	ListOrdersByChalet(ctx context.Context, chalet string) ([]model.Order, error)
	ReleaseChalet(ctx context.Context, number string) error
	DeleteOrdersByChalet(ctx context.Context, chalet string) error
}

// ClosingService closes a chalet's account: it exports the consumption
// statement, mails it, and only then clears the chalet and deletes its
// orders. The irreversible steps run strictly after the export and mail
// handoff have succeeded, so a mail failure leaves the tab untouched.
type ClosingService struct {
	store ClosingStore
	mail  mailer.Mailer
	now   func() time.Time
}

// NewClosingService creates a ClosingService.
func NewClosingService(store ClosingStore, mail mailer.Mailer) *ClosingService {
	return &ClosingService{store: store, mail: mail, now: time.Now}
}

// CloseResult reports what a completed closing did.
type CloseResult struct {
	Chalet        string `json:"chalet"`
	ClientID      string `json:"clientId"`
	OrdersDeleted int    `json:"ordersDeleted"`
	ExportName    string `json:"exportName"`
}

// Close runs the account-closing flow for one chalet.
func (s *ClosingService) Close(ctx context.Context, chaletNumber string) (*CloseResult, error) {
	chalet, err := s.store.GetChalet(ctx, chaletNumber)
	if err != nil {
		return nil, err
	}
	if !chalet.Booked {
		return nil, ErrChaletNotBooked
	}

	clientID := ""
	if chalet.ClientID != nil {
		clientID = *chalet.ClientID
	}

	// Precondition: no mail sink, no closing. Checked before anything else
	// so the flow cannot reach a destructive step it would have to abort.
	if !s.mail.Available() {
		return nil, ErrMailUnavailable
	}

	orders, err := s.store.ListOrdersByChalet(ctx, chaletNumber)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	report := consumption.BuildReport(chaletNumber, clientID, orders)
	csv := report.CSV()

	exportName := fmt.Sprintf("chalet_%s_client_%s_%d.csv", chaletNumber, clientID, s.now().UnixMilli())
	err = s.mail.Send(mailer.Message{
		Subject:        fmt.Sprintf("Compte Chalet %s - Client %s", chaletNumber, clientID),
		Body:           fmt.Sprintf("Veuillez trouver ci-joint le relevé de consommation du chalet %s pour le client %s.", chaletNumber, clientID),
		AttachmentName: exportName,
		Attachment:     []byte(csv),
	})
	if err != nil {
		return nil, fmt.Errorf("mail export: %w", err)
	}

	// Destructive steps only from here on.
	if err := s.store.ReleaseChalet(ctx, chaletNumber); err != nil {
		return nil, fmt.Errorf("release chalet: %w", err)
	}
	if err := s.store.DeleteOrdersByChalet(ctx, chaletNumber); err != nil {
		return nil, fmt.Errorf("delete orders: %w", err)
	}

	return &CloseResult{
		Chalet:        chaletNumber,
		ClientID:      clientID,
		OrdersDeleted: len(orders),
		ExportName:    exportName,
	}, nil
}
