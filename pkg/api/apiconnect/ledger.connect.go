package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/swisscoin/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "swisscoin.v1.LedgerService"

// Procedure names for the LedgerService RPCs.
const (
	LedgerServiceCreateExpenseProcedure    = "/swisscoin.v1.LedgerService/CreateExpense"
	LedgerServiceGetExpenseProcedure       = "/swisscoin.v1.LedgerService/GetExpense"
	LedgerServiceReplaceExpenseProcedure   = "/swisscoin.v1.LedgerService/ReplaceExpense"
	LedgerServiceDeleteExpenseProcedure    = "/swisscoin.v1.LedgerService/DeleteExpense"
	LedgerServiceCreateSettlementProcedure = "/swisscoin.v1.LedgerService/CreateSettlement"
	LedgerServiceRecordPaymentProcedure    = "/swisscoin.v1.LedgerService/RecordPayment"
	LedgerServiceDeleteSettlementProcedure = "/swisscoin.v1.LedgerService/DeleteSettlement"
	LedgerServiceGetBalanceProcedure       = "/swisscoin.v1.LedgerService/GetBalance"
	LedgerServiceGetGroupShareProcedure    = "/swisscoin.v1.LedgerService/GetGroupShare"
	LedgerServiceGetGroupBalancesProcedure = "/swisscoin.v1.LedgerService/GetGroupBalances"
	LedgerServiceListSettlementsProcedure  = "/swisscoin.v1.LedgerService/ListSettlements"
)

// LedgerServiceClient is a client for the swisscoin.v1.LedgerService service.
type LedgerServiceClient interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	ReplaceExpense(context.Context, *connect.Request[api.ReplaceExpenseRequest]) (*connect.Response[api.ReplaceExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	CreateSettlement(context.Context, *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error)
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	DeleteSettlement(context.Context, *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error)
	GetBalance(context.Context, *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error)
	GetGroupShare(context.Context, *connect.Request[api.GetGroupShareRequest]) (*connect.Response[api.GetGroupShareResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
}

// NewLedgerServiceClient constructs a client for the swisscoin.v1.LedgerService service. The
// JSON codec is always used; opts may add interceptors or headers.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &ledgerServiceClient{
		createExpense:    connect.NewClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL+LedgerServiceCreateExpenseProcedure, opts...),
		getExpense:       connect.NewClient[api.GetExpenseRequest, api.GetExpenseResponse](httpClient, baseURL+LedgerServiceGetExpenseProcedure, opts...),
		replaceExpense:   connect.NewClient[api.ReplaceExpenseRequest, api.ReplaceExpenseResponse](httpClient, baseURL+LedgerServiceReplaceExpenseProcedure, opts...),
		deleteExpense:    connect.NewClient[api.DeleteExpenseRequest, api.DeleteExpenseResponse](httpClient, baseURL+LedgerServiceDeleteExpenseProcedure, opts...),
		createSettlement: connect.NewClient[api.CreateSettlementRequest, api.CreateSettlementResponse](httpClient, baseURL+LedgerServiceCreateSettlementProcedure, opts...),
		recordPayment:    connect.NewClient[api.RecordPaymentRequest, api.RecordPaymentResponse](httpClient, baseURL+LedgerServiceRecordPaymentProcedure, opts...),
		deleteSettlement: connect.NewClient[api.DeleteSettlementRequest, api.DeleteSettlementResponse](httpClient, baseURL+LedgerServiceDeleteSettlementProcedure, opts...),
		getBalance:       connect.NewClient[api.GetBalanceRequest, api.GetBalanceResponse](httpClient, baseURL+LedgerServiceGetBalanceProcedure, opts...),
		getGroupShare:    connect.NewClient[api.GetGroupShareRequest, api.GetGroupShareResponse](httpClient, baseURL+LedgerServiceGetGroupShareProcedure, opts...),
		getGroupBalances: connect.NewClient[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse](httpClient, baseURL+LedgerServiceGetGroupBalancesProcedure, opts...),
		listSettlements:  connect.NewClient[api.ListSettlementsRequest, api.ListSettlementsResponse](httpClient, baseURL+LedgerServiceListSettlementsProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	createExpense    *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	getExpense       *connect.Client[api.GetExpenseRequest, api.GetExpenseResponse]
	replaceExpense   *connect.Client[api.ReplaceExpenseRequest, api.ReplaceExpenseResponse]
	deleteExpense    *connect.Client[api.DeleteExpenseRequest, api.DeleteExpenseResponse]
	createSettlement *connect.Client[api.CreateSettlementRequest, api.CreateSettlementResponse]
	recordPayment    *connect.Client[api.RecordPaymentRequest, api.RecordPaymentResponse]
	deleteSettlement *connect.Client[api.DeleteSettlementRequest, api.DeleteSettlementResponse]
	getBalance       *connect.Client[api.GetBalanceRequest, api.GetBalanceResponse]
	getGroupShare    *connect.Client[api.GetGroupShareRequest, api.GetGroupShareResponse]
	getGroupBalances *connect.Client[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse]
	listSettlements  *connect.Client[api.ListSettlementsRequest, api.ListSettlementsResponse]
}

func (c *ledgerServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ReplaceExpense(ctx context.Context, req *connect.Request[api.ReplaceExpenseRequest]) (*connect.Response[api.ReplaceExpenseResponse], error) {
	return c.replaceExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	return c.createSettlement.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	return c.recordPayment.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	return c.deleteSettlement.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetBalance(ctx context.Context, req *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	return c.getBalance.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetGroupShare(ctx context.Context, req *connect.Request[api.GetGroupShareRequest]) (*connect.Response[api.GetGroupShareResponse], error) {
	return c.getGroupShare.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

// LedgerServiceHandler is implemented by servers of the swisscoin.v1.LedgerService service.
// LedgerService manages expenses, settlements and balances.
type LedgerServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	ReplaceExpense(context.Context, *connect.Request[api.ReplaceExpenseRequest]) (*connect.Response[api.ReplaceExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	CreateSettlement(context.Context, *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error)
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	DeleteSettlement(context.Context, *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error)
	GetBalance(context.Context, *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error)
	GetGroupShare(context.Context, *connect.Request[api.GetGroupShareRequest]) (*connect.Response[api.GetGroupShareResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createExpenseHandler := connect.NewUnaryHandler(LedgerServiceCreateExpenseProcedure, svc.CreateExpense, opts...)
	getExpenseHandler := connect.NewUnaryHandler(LedgerServiceGetExpenseProcedure, svc.GetExpense, opts...)
	replaceExpenseHandler := connect.NewUnaryHandler(LedgerServiceReplaceExpenseProcedure, svc.ReplaceExpense, opts...)
	deleteExpenseHandler := connect.NewUnaryHandler(LedgerServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...)
	createSettlementHandler := connect.NewUnaryHandler(LedgerServiceCreateSettlementProcedure, svc.CreateSettlement, opts...)
	recordPaymentHandler := connect.NewUnaryHandler(LedgerServiceRecordPaymentProcedure, svc.RecordPayment, opts...)
	deleteSettlementHandler := connect.NewUnaryHandler(LedgerServiceDeleteSettlementProcedure, svc.DeleteSettlement, opts...)
	getBalanceHandler := connect.NewUnaryHandler(LedgerServiceGetBalanceProcedure, svc.GetBalance, opts...)
	getGroupShareHandler := connect.NewUnaryHandler(LedgerServiceGetGroupShareProcedure, svc.GetGroupShare, opts...)
	getGroupBalancesHandler := connect.NewUnaryHandler(LedgerServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...)
	listSettlementsHandler := connect.NewUnaryHandler(LedgerServiceListSettlementsProcedure, svc.ListSettlements, opts...)
	return "/swisscoin.v1.LedgerService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case LedgerServiceCreateExpenseProcedure:
			createExpenseHandler.ServeHTTP(w, r)
		case LedgerServiceGetExpenseProcedure:
			getExpenseHandler.ServeHTTP(w, r)
		case LedgerServiceReplaceExpenseProcedure:
			replaceExpenseHandler.ServeHTTP(w, r)
		case LedgerServiceDeleteExpenseProcedure:
			deleteExpenseHandler.ServeHTTP(w, r)
		case LedgerServiceCreateSettlementProcedure:
			createSettlementHandler.ServeHTTP(w, r)
		case LedgerServiceRecordPaymentProcedure:
			recordPaymentHandler.ServeHTTP(w, r)
		case LedgerServiceDeleteSettlementProcedure:
			deleteSettlementHandler.ServeHTTP(w, r)
		case LedgerServiceGetBalanceProcedure:
			getBalanceHandler.ServeHTTP(w, r)
		case LedgerServiceGetGroupShareProcedure:
			getGroupShareHandler.ServeHTTP(w, r)
		case LedgerServiceGetGroupBalancesProcedure:
			getGroupBalancesHandler.ServeHTTP(w, r)
		case LedgerServiceListSettlementsProcedure:
			listSettlementsHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedLedgerServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedLedgerServiceHandler struct{}

func (UnimplementedLedgerServiceHandler) CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.LedgerService.CreateExpense is not implemented"))
}

func (UnimplementedLedgerServiceHandler) GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.LedgerService.GetExpense is not implemented"))
}

func (UnimplementedLedgerServiceHandler) ReplaceExpense(context.Context, *connect.Request[api.ReplaceExpenseRequest]) (*connect.Response[api.ReplaceExpenseResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.LedgerService.ReplaceExpense is not implemented"))
}

func (UnimplementedLedgerServiceHandler) DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.LedgerService.DeleteExpense is not implemented"))
}

func (UnimplementedLedgerServiceHandler) CreateSettlement(context.Context, *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.LedgerService.CreateSettlement is not implemented"))
}

func (UnimplementedLedgerServiceHandler) RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.LedgerService.RecordPayment is not implemented"))
}

func (UnimplementedLedgerServiceHandler) DeleteSettlement(context.Context, *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.LedgerService.DeleteSettlement is not implemented"))
}

func (UnimplementedLedgerServiceHandler) GetBalance(context.Context, *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.LedgerService.GetBalance is not implemented"))
}

func (UnimplementedLedgerServiceHandler) GetGroupShare(context.Context, *connect.Request[api.GetGroupShareRequest]) (*connect.Response[api.GetGroupShareResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.LedgerService.GetGroupShare is not implemented"))
}

func (UnimplementedLedgerServiceHandler) GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.LedgerService.GetGroupBalances is not implemented"))
}

func (UnimplementedLedgerServiceHandler) ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.LedgerService.ListSettlements is not implemented"))
}
