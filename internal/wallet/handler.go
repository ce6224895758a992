package wallet

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nile-pay/nile_pay/internal/ledger"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type mutationRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ReferenceID string          `json:"reference_id"`
}

type walletResponse struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Balance   string     `json:"balance"`
	Currency  string     `json:"currency"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type entryResponse struct {
	ID            string    `json:"id"`
	WalletID      string    `json:"wallet_id"`
	Type          string    `json:"type"`
	Amount        string    `json:"amount"`
	BalanceBefore string    `json:"balance_before"`
	BalanceAfter  string    `json:"balance_after"`
	Currency      string    `json:"currency"`
	Description   string    `json:"description,omitempty"`
	ReferenceID   string    `json:"reference_id,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type historyResponse struct {
	Transactions    []entryResponse `json:"transactions"`
	CurrentPage     int             `json:"current_page"`
	PageSize        int             `json:"page_size"`
	TotalCount      int64           `json:"total_count"`
	TotalPages      int             `json:"total_pages"`
	HasPreviousPage bool            `json:"has_previous_page"`
	HasNextPage     bool            `json:"has_next_page"`
}

// Get returns a wallet by its identifier.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "walletId")
	if err != nil {
		return err
	}
	w, err := h.service.GetWallet(c.UserContext(), id)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(toWalletResponse(w))
}

// GetByUser returns the single wallet owned by a user.
func (h *Handler) GetByUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return err
	}
	w, err := h.service.GetWalletByUser(c.UserContext(), userID)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(toWalletResponse(w))
}

// History returns one page of the wallet's transaction history.
func (h *Handler) History(c *fiber.Ctx) error {
	id, err := parseID(c, "walletId")
	if err != nil {
		return err
	}
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", ledger.DefaultPageSize)

	result, err := h.service.TransactionHistory(c.UserContext(), id, page, pageSize)
	if err != nil {
		return mapError(err)
	}

	entries := make([]entryResponse, 0, len(result.Entries))
	for _, e := range result.Entries {
		entries = append(entries, toEntryResponse(e))
	}
	return c.Status(http.StatusOK).JSON(historyResponse{
		Transactions:    entries,
		CurrentPage:     result.CurrentPage,
		PageSize:        result.PageSize,
		TotalCount:      result.TotalCount,
		TotalPages:      result.TotalPages,
		HasPreviousPage: result.HasPreviousPage,
		HasNextPage:     result.HasNextPage,
	})
}

// Credit adds funds to a wallet.
func (h *Handler) Credit(c *fiber.Ctx) error {
	return h.mutate(c, h.service.Credit)
}

// Debit withdraws funds from a wallet.
func (h *Handler) Debit(c *fiber.Ctx) error {
	return h.mutate(c, h.service.Debit)
}

func (h *Handler) mutate(c *fiber.Ctx, op func(ctx context.Context, id uuid.UUID, in MutationInput) (Wallet, ledger.Entry, error)) error {
	id, err := parseID(c, "walletId")
	if err != nil {
		return err
	}
	var req mutationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	w, entry, err := op(c.UserContext(), id, MutationInput{
		Amount:      req.Amount,
		Description: req.Description,
		ReferenceID: req.ReferenceID,
	})
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"wallet":      toWalletResponse(w),
		"transaction": toEntryResponse(entry),
	})
}

// Freeze suspends a wallet.
func (h *Handler) Freeze(c *fiber.Ctx) error {
	return h.lifecycle(c, h.service.Freeze)
}

// Unfreeze reactivates a wallet.
func (h *Handler) Unfreeze(c *fiber.Ctx) error {
	return h.lifecycle(c, h.service.Unfreeze)
}

// Close permanently retires a wallet.
func (h *Handler) Close(c *fiber.Ctx) error {
	return h.lifecycle(c, h.service.Close)
}

func (h *Handler) lifecycle(c *fiber.Ctx, op func(ctx context.Context, id uuid.UUID) (Wallet, error)) error {
	id, err := parseID(c, "walletId")
	if err != nil {
		return err
	}
	w, err := op(c.UserContext(), id)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(toWalletResponse(w))
}

func parseID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, fiber.NewError(http.StatusBadRequest, "invalid "+param)
	}
	return id, nil
}

// mapError translates domain sentinels into distinct HTTP statuses so the
// boundary never has to guess.
func mapError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInsufficientFunds):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrNotActive), errors.Is(err, ErrClosed), errors.Is(err, ErrNonZeroBalance):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrConflict):
		return fiber.NewError(http.StatusConflict, err.Error())
	default:
		return err
	}
}

func toWalletResponse(w Wallet) walletResponse {
	return walletResponse{
		ID:        w.ID.String(),
		UserID:    w.UserID.String(),
		Balance:   w.Balance.String(),
		Currency:  w.Currency,
		Status:    string(w.Status),
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func toEntryResponse(e ledger.Entry) entryResponse {
	return entryResponse{
		ID:            e.ID.String(),
		WalletID:      e.WalletID.String(),
		Type:          string(e.Type),
		Amount:        e.Amount.String(),
		BalanceBefore: e.BalanceBefore.String(),
		BalanceAfter:  e.BalanceAfter.String(),
		Currency:      e.Currency,
		Description:   e.Description,
		ReferenceID:   e.ReferenceID,
		Status:        string(e.Status),
		CreatedAt:     e.CreatedAt,
	}
}
