package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/gorilla/mux"

	"github.com/tokenforge/tokend/internal/ledger"
	"github.com/tokenforge/tokend/internal/logger"
	"github.com/tokenforge/tokend/internal/state"
	"github.com/tokenforge/tokend/internal/token"
	"github.com/tokenforge/tokend/internal/types"
	"github.com/tokenforge/tokend/internal/utils"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer exposes the token over HTTP. Amounts travel as decimal strings
// in JSON; they are arbitrary-precision integers and do not fit in floats.
type WebServer struct {
	router *mux.Router
	port   string
	token  *token.Token
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, tok *token.Token) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		port:   port,
		token:  tok,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/token", ws.handleGetToken).Methods("GET")
	api.HandleFunc("/parameters", ws.handleGetParameters).Methods("GET")
	api.HandleFunc("/balances/{address}", ws.handleGetBalance).Methods("GET")
	api.HandleFunc("/allowances/{owner}/{spender}", ws.handleGetAllowance).Methods("GET")
	api.HandleFunc("/transfers", ws.handleGetTransfers).Methods("GET")
	api.HandleFunc("/distributions", ws.handleGetDistributions).Methods("GET")

	api.HandleFunc("/transfer", ws.handleTransfer).Methods("POST")
	api.HandleFunc("/transfer-from", ws.handleTransferFrom).Methods("POST")
	api.HandleFunc("/approve", ws.handleApprove).Methods("POST")
	api.HandleFunc("/allowance/increase", ws.handleIncreaseAllowance).Methods("POST")
	api.HandleFunc("/allowance/decrease", ws.handleDecreaseAllowance).Methods("POST")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/fees", ws.handleUpdateFees).Methods("POST")
	admin.HandleFunc("/portions", ws.handleUpdatePortions).Methods("POST")
	admin.HandleFunc("/max-tx", ws.handleUpdateMaxTx).Methods("POST")
	admin.HandleFunc("/max-wallet", ws.handleUpdateMaxWallet).Methods("POST")
	admin.HandleFunc("/swap-threshold", ws.handleUpdateSwapThreshold).Methods("POST")
	admin.HandleFunc("/flags/trading", ws.handleSetTrading).Methods("POST")
	admin.HandleFunc("/flags/fee", ws.handleSetFee).Methods("POST")
	admin.HandleFunc("/flags/swap", ws.handleSetSwap).Methods("POST")
	admin.HandleFunc("/exclude", ws.handleSetExcluded).Methods("POST")
	admin.HandleFunc("/marketing-wallet", ws.handleUpdateMarketingWallet).Methods("POST")
	admin.HandleFunc("/admin-fund-wallet", ws.handleUpdateAdminFundWallet).Methods("POST")
	admin.HandleFunc("/ownership/transfer", ws.handleTransferOwnership).Methods("POST")
	admin.HandleFunc("/ownership/renounce", ws.handleRenounceOwnership).Methods("POST")
	admin.HandleFunc("/rescue/swap-withdraw", ws.handleRescueSwapWithdraw).Methods("POST")
	admin.HandleFunc("/rescue/withdraw-value", ws.handleRescueWithdrawValue).Methods("POST")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
	}

	overallStatus := "OK"
	statusCode := http.StatusOK
	if !dbHealthy {
		overallStatus = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "tokend",
			"version": "1.0.0",
		},
		"token_status": map[string]interface{}{
			"database_healthy":    dbHealthy,
			"trading_enabled":     ws.token.TradingIsEnabled(),
			"fee_enabled":         ws.token.TakeFeeEnabled(),
			"swap_enabled":        ws.token.SwapEnabled(),
			"collected_fee_total": ws.token.CollectedFeeTotal().String(),
		},
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleGetToken returns the token's static and current metadata
func (ws *WebServer) handleGetToken(w http.ResponseWriter, r *http.Request) {
	supplyWhole, err := utils.BaseToWholeString(ws.token.TotalSupply(), ws.token.Decimals())
	if err != nil {
		supplyWhole = ""
	}
	response := map[string]interface{}{
		"name":                ws.token.Name(),
		"symbol":              ws.token.Symbol(),
		"decimals":            ws.token.Decimals(),
		"total_supply":        ws.token.TotalSupply().String(),
		"total_supply_whole":  supplyWhole,
		"owner":               ws.token.Owner(),
		"contract_address":    ws.token.ContractAddress(),
		"pair_address":        ws.token.Pair(),
		"marketing_wallet":    ws.token.MarketingWallet(),
		"admin_fund_wallet":   ws.token.AdminFundWallet(),
		"collected_fee_total": ws.token.CollectedFeeTotal().String(),
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetParameters returns the active parameter set
func (ws *WebServer) handleGetParameters(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"parameters": ws.token.Parameters(),
		"timestamp":  time.Now().UTC(),
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

func (ws *WebServer) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	addr := types.Address(vars["address"])

	response := map[string]interface{}{
		"address": addr,
		"balance": ws.token.BalanceOf(addr).String(),
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

func (ws *WebServer) handleGetAllowance(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	owner := types.Address(vars["owner"])
	spender := types.Address(vars["spender"])

	response := map[string]interface{}{
		"owner":     owner,
		"spender":   spender,
		"allowance": ws.token.Allowance(owner, spender).String(),
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetTransfers returns the recent transfer log
func (ws *WebServer) handleGetTransfers(w http.ResponseWriter, r *http.Request) {
	limit := ws.parseLimit(r, 20)

	transfers, err := state.GetRecentTransfers(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent transfers")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve transfers")
		return
	}

	response := map[string]interface{}{
		"transfers": transfers,
		"count":     len(transfers),
		"limit":     limit,
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetDistributions returns recent distribution receipts
func (ws *WebServer) handleGetDistributions(w http.ResponseWriter, r *http.Request) {
	limit := ws.parseLimit(r, 20)

	receipts, err := state.GetRecentDistributionReceipts(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get distribution receipts")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve distributions")
		return
	}

	response := map[string]interface{}{
		"distributions": receipts,
		"count":         len(receipts),
		"limit":         limit,
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

type transferRequest struct {
	Caller  types.Address `json:"caller"`
	Spender types.Address `json:"spender"`
	From    types.Address `json:"from"`
	To      types.Address `json:"to"`
	Amount  string        `json:"amount"`
}

func (ws *WebServer) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	amount, ok := sdkmath.NewIntFromString(req.Amount)
	if !ok {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid amount")
		return
	}
	if err := ws.token.Transfer(req.Caller, req.To, amount); err != nil {
		ws.writeTokenError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (ws *WebServer) handleTransferFrom(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	amount, ok := sdkmath.NewIntFromString(req.Amount)
	if !ok {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid amount")
		return
	}
	if err := ws.token.TransferFrom(req.Spender, req.From, req.To, amount); err != nil {
		ws.writeTokenError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

type approveRequest struct {
	Caller  types.Address `json:"caller"`
	Spender types.Address `json:"spender"`
	Amount  string        `json:"amount"`
}

func (ws *WebServer) handleApprove(w http.ResponseWriter, r *http.Request) {
	ws.handleAllowanceOp(w, r, ws.token.Approve)
}

func (ws *WebServer) handleIncreaseAllowance(w http.ResponseWriter, r *http.Request) {
	ws.handleAllowanceOp(w, r, ws.token.IncreaseAllowance)
}

func (ws *WebServer) handleDecreaseAllowance(w http.ResponseWriter, r *http.Request) {
	ws.handleAllowanceOp(w, r, ws.token.DecreaseAllowance)
}

func (ws *WebServer) handleAllowanceOp(w http.ResponseWriter, r *http.Request, op func(types.Address, types.Address, sdkmath.Int) error) {
	var req approveRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	amount, ok := sdkmath.NewIntFromString(req.Amount)
	if !ok {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid amount")
		return
	}
	if err := op(req.Caller, req.Spender, amount); err != nil {
		ws.writeTokenError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

type feeUpdateRequest struct {
	Caller      types.Address `json:"caller"`
	MarketingBP int64         `json:"marketing_bp"`
	AdminBP     int64         `json:"admin_bp"`
	LiquidityBP int64         `json:"liquidity_bp"`
}

func (ws *WebServer) handleUpdateFees(w http.ResponseWriter, r *http.Request) {
	var req feeUpdateRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	if err := ws.token.UpdateFees(req.Caller, req.MarketingBP, req.AdminBP, req.LiquidityBP); err != nil {
		ws.writeTokenError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (ws *WebServer) handleUpdatePortions(w http.ResponseWriter, r *http.Request) {
	var req feeUpdateRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	if err := ws.token.UpdatePortionsOfSwap(req.Caller, req.MarketingBP, req.AdminBP, req.LiquidityBP); err != nil {
		ws.writeTokenError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

type limitUpdateRequest struct {
	Caller types.Address `json:"caller"`
	Amount string        `json:"amount"`
}

func (ws *WebServer) handleUpdateMaxTx(w http.ResponseWriter, r *http.Request) {
	ws.handleLimitOp(w, r, ws.token.UpdateTransactionMax)
}

func (ws *WebServer) handleUpdateMaxWallet(w http.ResponseWriter, r *http.Request) {
	ws.handleLimitOp(w, r, ws.token.UpdateWalletMax)
}

func (ws *WebServer) handleUpdateSwapThreshold(w http.ResponseWriter, r *http.Request) {
	ws.handleLimitOp(w, r, ws.token.UpdateSwapTokensAt)
}

func (ws *WebServer) handleLimitOp(w http.ResponseWriter, r *http.Request, op func(types.Address, sdkmath.Int) error) {
	var req limitUpdateRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	amount, ok := sdkmath.NewIntFromString(req.Amount)
	if !ok {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid amount")
		return
	}
	if err := op(req.Caller, amount); err != nil {
		ws.writeTokenError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

type flagRequest struct {
	Caller  types.Address `json:"caller"`
	Enabled bool          `json:"enabled"`
}

func (ws *WebServer) handleSetTrading(w http.ResponseWriter, r *http.Request) {
	ws.handleFlagOp(w, r, ws.token.UpdateTradingIsEnabled)
}

func (ws *WebServer) handleSetFee(w http.ResponseWriter, r *http.Request) {
	ws.handleFlagOp(w, r, ws.token.SetFeeEnabled)
}

func (ws *WebServer) handleSetSwap(w http.ResponseWriter, r *http.Request) {
	ws.handleFlagOp(w, r, ws.token.SetSwapEnabled)
}

func (ws *WebServer) handleFlagOp(w http.ResponseWriter, r *http.Request, op func(types.Address, bool) error) {
	var req flagRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	if err := op(req.Caller, req.Enabled); err != nil {
		ws.writeTokenError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

type excludeRequest struct {
	Caller   types.Address `json:"caller"`
	Account  types.Address `json:"account"`
	Excluded bool          `json:"excluded"`
}

func (ws *WebServer) handleSetExcluded(w http.ResponseWriter, r *http.Request) {
	var req excludeRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	if err := ws.token.SetExcludedFromFee(req.Caller, req.Account, req.Excluded); err != nil {
		ws.writeTokenError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

type walletUpdateRequest struct {
	Caller types.Address `json:"caller"`
	Wallet types.Address `json:"wallet"`
}

func (ws *WebServer) handleUpdateMarketingWallet(w http.ResponseWriter, r *http.Request) {
	var req walletUpdateRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	if err := ws.token.UpdateMarketingWallet(req.Caller, req.Wallet); err != nil {
		ws.writeTokenError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (ws *WebServer) handleUpdateAdminFundWallet(w http.ResponseWriter, r *http.Request) {
	var req walletUpdateRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	if err := ws.token.UpdateAdminFundWallet(req.Caller, req.Wallet); err != nil {
		ws.writeTokenError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

type ownershipRequest struct {
	Caller   types.Address `json:"caller"`
	NewOwner types.Address `json:"new_owner"`
}

func (ws *WebServer) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	var req ownershipRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	if err := ws.token.TransferOwnership(req.Caller, req.NewOwner); err != nil {
		ws.writeTokenError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (ws *WebServer) handleRenounceOwnership(w http.ResponseWriter, r *http.Request) {
	var req ownershipRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	if err := ws.token.RenounceOwnership(req.Caller); err != nil {
		ws.writeTokenError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

type rescueRequest struct {
	Caller    types.Address `json:"caller"`
	Recipient types.Address `json:"recipient"`
	Amount    string        `json:"amount"`
}

func (ws *WebServer) handleRescueSwapWithdraw(w http.ResponseWriter, r *http.Request) {
	var req rescueRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	amount, ok := sdkmath.NewIntFromString(req.Amount)
	if !ok {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid amount")
		return
	}
	if err := ws.token.SwapTokensAndWithdrawValue(req.Caller, req.Recipient, amount); err != nil {
		ws.writeTokenError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (ws *WebServer) handleRescueWithdrawValue(w http.ResponseWriter, r *http.Request) {
	var req rescueRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	if err := ws.token.WithdrawValue(req.Caller, req.Recipient); err != nil {
		ws.writeTokenError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (ws *WebServer) parseLimit(r *http.Request, def int) int {
	limit := def
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}
	return limit
}

func (ws *WebServer) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// writeTokenError maps token failures onto HTTP status codes.
func (ws *WebServer) writeTokenError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, token.ErrNotOwner):
		status = http.StatusForbidden
	case errors.Is(err, token.ErrAmmInteractionFailed):
		status = http.StatusBadGateway
	case errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrAllowanceExceeded),
		errors.Is(err, token.ErrMaxTxExceeded),
		errors.Is(err, token.ErrMaxWalletExceeded),
		errors.Is(err, token.ErrTradingDisabled),
		errors.Is(err, token.ErrNothingToWithdraw):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrZeroAmount),
		errors.Is(err, ledger.ErrAmountInvalid),
		errors.Is(err, ledger.ErrInvalidSender),
		errors.Is(err, ledger.ErrInvalidRecipient),
		errors.Is(err, token.ErrInvalidAddress),
		errors.Is(err, token.ErrFeeTooHigh),
		errors.Is(err, token.ErrPortionMismatch):
		status = http.StatusBadRequest
	}
	ws.writeErrorResponse(w, status, err.Error())
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
