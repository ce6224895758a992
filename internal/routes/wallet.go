package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nile-pay/nile_pay/internal/wallet"
)

// RegisterWalletRoutes wires wallet-related endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Get("/wallets/:walletId", h.Get)
	r.Get("/wallets/user/:userId", h.GetByUser)
	r.Get("/wallets/:walletId/transactions", h.History)
	r.Post("/wallets/:walletId/credit", h.Credit)
	r.Post("/wallets/:walletId/debit", h.Debit)
	r.Post("/wallets/:walletId/freeze", h.Freeze)
	r.Post("/wallets/:walletId/unfreeze", h.Unfreeze)
	r.Post("/wallets/:walletId/close", h.Close)
}
