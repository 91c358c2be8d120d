package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osmith/BadgeForge_Go/internal/logger"
	"github.com/osmith/BadgeForge_Go/internal/wallet"
)

// BoardInvalidator drops cached leaderboards touched by a wallet mutation.
type BoardInvalidator interface {
	InvalidateCategory(category string)
}

// SpendRequest debits points from a user's balance.
type SpendRequest struct {
	Category    string         `json:"category" validate:"required"`
	Amount      int64          `json:"amount" validate:"required,gt=0"`
	Description string         `json:"description"`
	ReferenceID string         `json:"referenceId"`
	Metadata    map[string]any `json:"metadata"`
}

// TransferRequest moves points between two users in one category.
type TransferRequest struct {
	ToUserID    string         `json:"toUserId" validate:"required"`
	Category    string         `json:"category" validate:"required"`
	Amount      int64          `json:"amount" validate:"required,gt=0"`
	Description string         `json:"description"`
	ReferenceID string         `json:"referenceId"`
	Metadata    map[string]any `json:"metadata"`
}

// HandleGetWalletBalances returns every balance a user holds.
// @Summary Get wallet balances
// @Tags wallet
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {array} domain.WalletBalance
// @Router /api/wallet/users/{userId}/balances [get]
func HandleGetWalletBalances(wallets *wallet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")

		balances, err := wallets.ListBalances(r.Context(), userID)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to list balances", "user_id", userID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, balances)
	}
}

// HandleGetWalletTransactions returns a user's ledger entries for one
// category, optionally bounded by from/to timestamps.
// @Summary Get wallet transactions
// @Tags wallet
// @Produce json
// @Param userId path string true "User ID"
// @Param category path string true "Point category"
// @Param from query string false "RFC 3339 lower bound"
// @Param to query string false "RFC 3339 upper bound"
// @Success 200 {array} domain.WalletTransaction
// @Failure 400 {object} ErrorResponse
// @Router /api/wallet/users/{userId}/transactions/{category} [get]
func HandleGetWalletTransactions(wallets *wallet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		category := chi.URLParam(r, "category")

		from, err := queryTime(r, "from")
		if err != nil {
			respondServiceError(w, err)
			return
		}
		to, err := queryTime(r, "to")
		if err != nil {
			respondServiceError(w, err)
			return
		}

		txs, err := wallets.GetTransactions(r.Context(), userID, category, from, to)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to get transactions", "user_id", userID, "category", category, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, txs)
	}
}

// HandleSpend debits points from a user's balance.
// @Summary Spend points
// @Tags wallet
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param request body SpendRequest true "Spend request"
// @Success 200 {object} domain.WalletTransaction
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/wallet/users/{userId}/spend [post]
func HandleSpend(wallets *wallet.Service, boards BoardInvalidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		userID := chi.URLParam(r, "userId")

		var req SpendRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Spend"); err != nil {
			return
		}

		tx, err := wallets.Debit(r.Context(), userID, req.Category, req.Amount, req.Description, req.ReferenceID, req.Metadata)
		if err != nil {
			log.Warn("Spend failed", "user_id", userID, "category", req.Category, "amount", req.Amount, "error", err)
			respondServiceError(w, err)
			return
		}

		boards.InvalidateCategory(req.Category)
		log.Info("Points spent", "user_id", userID, "category", req.Category, "amount", req.Amount)
		respondJSON(w, http.StatusOK, tx)
	}
}

// HandleTransfer moves points from the path user to another user.
// @Summary Transfer points
// @Tags wallet
// @Accept json
// @Produce json
// @Param userId path string true "Sending user ID"
// @Param request body TransferRequest true "Transfer request"
// @Success 200 {array} domain.WalletTransaction
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/wallet/users/{userId}/transfer [post]
func HandleTransfer(wallets *wallet.Service, boards BoardInvalidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		fromUserID := chi.URLParam(r, "userId")

		var req TransferRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Transfer"); err != nil {
			return
		}

		out, in, err := wallets.Transfer(r.Context(), fromUserID, req.ToUserID, req.Category, req.Amount, req.Description, req.ReferenceID, req.Metadata)
		if err != nil {
			log.Warn("Transfer failed", "from_user_id", fromUserID, "to_user_id", req.ToUserID, "category", req.Category, "error", err)
			respondServiceError(w, err)
			return
		}

		boards.InvalidateCategory(req.Category)
		log.Info("Points transferred", "from_user_id", fromUserID, "to_user_id", req.ToUserID, "category", req.Category, "amount", req.Amount)
		respondJSON(w, http.StatusOK, []any{out, in})
	}
}
