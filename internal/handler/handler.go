package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/likhilliki/EcoPulse/internal/cardano"
	"github.com/likhilliki/EcoPulse/internal/service"
	"github.com/likhilliki/EcoPulse/pkg/auth"
	"github.com/likhilliki/EcoPulse/pkg/errors"
)

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"message": message})
}

func statusForError(err error) int {
	switch errors.Code(err) {
	case errors.ErrInvalidInput, errors.ErrEmailTaken, errors.ErrInvalidLogin:
		return http.StatusBadRequest
	case errors.ErrUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type contextKey string

const claimsKey contextKey = "authClaims"

// AuthMiddleware resolves the bearer token into the caller identity.
// Handlers behind it can trust CallerID without re-validation.
func AuthMiddleware(tokens *auth.TokenManager, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims := tokens.Verify(parts[1])
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// CallerID returns the authenticated user id stored by AuthMiddleware.
func CallerID(r *http.Request) string {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	if claims == nil {
		return ""
	}
	return claims.UserID
}

type AuthHandler struct {
	authSvc *service.AuthService
}

func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password required")
		return
	}

	token, user, err := h.authSvc.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"user": map[string]string{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password required")
		return
	}

	token, user, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"user": map[string]string{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	user, err := h.authSvc.CurrentUser(r.Context(), CallerID(r))
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": map[string]interface{}{
			"id":            user.ID,
			"email":         user.Email,
			"walletAddress": user.WalletAddress,
		},
	})
}

func (h *AuthHandler) ConnectWallet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		WalletAddress string `json:"walletAddress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.authSvc.ConnectWallet(r.Context(), CallerID(r), req.WalletAddress); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

type ReadingHandler struct {
	readingSvc *service.ReadingService
}

func NewReadingHandler(readingSvc *service.ReadingService) *ReadingHandler {
	return &ReadingHandler{readingSvc: readingSvc}
}

func (h *ReadingHandler) Record(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
		AQI       int    `json:"aqi"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	reading, err := h.readingSvc.Record(r.Context(), CallerID(r), req.Latitude, req.Longitude, req.AQI)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"reading": reading,
	})
}

func (h *ReadingHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 0 || limit > 500 {
		limit = 0
	}

	readings, err := h.readingSvc.History(r.Context(), CallerID(r), limit)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"readings": readings})
}

type AgentHandler struct {
	agentSvc *service.AgentService
}

func NewAgentHandler(agentSvc *service.AgentService) *AgentHandler {
	return &AgentHandler{agentSvc: agentSvc}
}

func (h *AgentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
		AQI       *int   `json:"aqi"`
		Location  string `json:"location"`
		Source    string `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Latitude == "" || req.Longitude == "" || req.AQI == nil {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	result, err := h.agentSvc.Submit(r.Context(), CallerID(r), service.SubmitRequest{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		AQI:       *req.AQI,
		Location:  req.Location,
		Source:    req.Source,
	})
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	if !result.Verified {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": result.Message,
			"score":   result.Score,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"message":       result.Message,
		"tokensAwarded": result.TokensAwarded,
		"score":         result.Score,
	})
}

func (h *AgentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats, err := h.agentSvc.GetStats(r.Context(), CallerID(r))
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"totalSubmissions":         stats.TotalSubmissions,
		"verifiedSubmissions":      stats.VerifiedSubmissions,
		"totalTokensAwarded":       stats.TotalTokensAwarded,
		"averageVerificationScore": stats.AverageVerificationScore,
	})
}

func (h *AgentHandler) Verifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	verifications, err := h.agentSvc.ListVerifications(r.Context(), CallerID(r))
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"verifications": verifications})
}

type TokenHandler struct {
	tokenSvc *service.TokenService
}

func NewTokenHandler(tokenSvc *service.TokenService) *TokenHandler {
	return &TokenHandler{tokenSvc: tokenSvc}
}

func (h *TokenHandler) Balance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	balance, err := h.tokenSvc.Balance(r.Context(), CallerID(r))
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"balance": balance})
}

type CardanoHandler struct {
	client *cardano.Client
}

func NewCardanoHandler(client *cardano.Client) *CardanoHandler {
	return &CardanoHandler{client: client}
}

func (h *CardanoHandler) SubmitTx(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		SignedTxCBOR string `json:"signedTxCBOR"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.SignedTxCBOR == "" {
		writeError(w, http.StatusBadRequest, "Missing signedTxCBOR")
		return
	}

	txHash, err := h.client.SubmitTransaction(r.Context(), req.SignedTxCBOR)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"txHash":  txHash,
	})
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
