package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/swisscoin/pkg/api"
)

// SubscriptionServiceName is the fully-qualified name of the SubscriptionService service.
const SubscriptionServiceName = "swisscoin.v1.SubscriptionService"

// Procedure names for the SubscriptionService RPCs.
const (
	SubscriptionServiceCreateSubscriptionProcedure = "/swisscoin.v1.SubscriptionService/CreateSubscription"
	SubscriptionServiceGetSubscriptionProcedure    = "/swisscoin.v1.SubscriptionService/GetSubscription"
	SubscriptionServicePauseSubscriptionProcedure  = "/swisscoin.v1.SubscriptionService/PauseSubscription"
	SubscriptionServiceResumeSubscriptionProcedure = "/swisscoin.v1.SubscriptionService/ResumeSubscription"
	SubscriptionServiceChargeSubscriptionProcedure = "/swisscoin.v1.SubscriptionService/ChargeSubscription"
)

// SubscriptionServiceClient is a client for the swisscoin.v1.SubscriptionService service.
type SubscriptionServiceClient interface {
	CreateSubscription(context.Context, *connect.Request[api.CreateSubscriptionRequest]) (*connect.Response[api.CreateSubscriptionResponse], error)
	GetSubscription(context.Context, *connect.Request[api.GetSubscriptionRequest]) (*connect.Response[api.GetSubscriptionResponse], error)
	PauseSubscription(context.Context, *connect.Request[api.PauseSubscriptionRequest]) (*connect.Response[api.PauseSubscriptionResponse], error)
	ResumeSubscription(context.Context, *connect.Request[api.ResumeSubscriptionRequest]) (*connect.Response[api.ResumeSubscriptionResponse], error)
	ChargeSubscription(context.Context, *connect.Request[api.ChargeSubscriptionRequest]) (*connect.Response[api.ChargeSubscriptionResponse], error)
}

// NewSubscriptionServiceClient constructs a client for the swisscoin.v1.SubscriptionService service. The
// JSON codec is always used; opts may add interceptors or headers.
func NewSubscriptionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SubscriptionServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &subscriptionServiceClient{
		createSubscription: connect.NewClient[api.CreateSubscriptionRequest, api.CreateSubscriptionResponse](httpClient, baseURL+SubscriptionServiceCreateSubscriptionProcedure, opts...),
		getSubscription:    connect.NewClient[api.GetSubscriptionRequest, api.GetSubscriptionResponse](httpClient, baseURL+SubscriptionServiceGetSubscriptionProcedure, opts...),
		pauseSubscription:  connect.NewClient[api.PauseSubscriptionRequest, api.PauseSubscriptionResponse](httpClient, baseURL+SubscriptionServicePauseSubscriptionProcedure, opts...),
		resumeSubscription: connect.NewClient[api.ResumeSubscriptionRequest, api.ResumeSubscriptionResponse](httpClient, baseURL+SubscriptionServiceResumeSubscriptionProcedure, opts...),
		chargeSubscription: connect.NewClient[api.ChargeSubscriptionRequest, api.ChargeSubscriptionResponse](httpClient, baseURL+SubscriptionServiceChargeSubscriptionProcedure, opts...),
	}
}

type subscriptionServiceClient struct {
	createSubscription *connect.Client[api.CreateSubscriptionRequest, api.CreateSubscriptionResponse]
	getSubscription    *connect.Client[api.GetSubscriptionRequest, api.GetSubscriptionResponse]
	pauseSubscription  *connect.Client[api.PauseSubscriptionRequest, api.PauseSubscriptionResponse]
	resumeSubscription *connect.Client[api.ResumeSubscriptionRequest, api.ResumeSubscriptionResponse]
	chargeSubscription *connect.Client[api.ChargeSubscriptionRequest, api.ChargeSubscriptionResponse]
}

func (c *subscriptionServiceClient) CreateSubscription(ctx context.Context, req *connect.Request[api.CreateSubscriptionRequest]) (*connect.Response[api.CreateSubscriptionResponse], error) {
	return c.createSubscription.CallUnary(ctx, req)
}

func (c *subscriptionServiceClient) GetSubscription(ctx context.Context, req *connect.Request[api.GetSubscriptionRequest]) (*connect.Response[api.GetSubscriptionResponse], error) {
	return c.getSubscription.CallUnary(ctx, req)
}

func (c *subscriptionServiceClient) PauseSubscription(ctx context.Context, req *connect.Request[api.PauseSubscriptionRequest]) (*connect.Response[api.PauseSubscriptionResponse], error) {
	return c.pauseSubscription.CallUnary(ctx, req)
}

func (c *subscriptionServiceClient) ResumeSubscription(ctx context.Context, req *connect.Request[api.ResumeSubscriptionRequest]) (*connect.Response[api.ResumeSubscriptionResponse], error) {
	return c.resumeSubscription.CallUnary(ctx, req)
}

func (c *subscriptionServiceClient) ChargeSubscription(ctx context.Context, req *connect.Request[api.ChargeSubscriptionRequest]) (*connect.Response[api.ChargeSubscriptionResponse], error) {
	return c.chargeSubscription.CallUnary(ctx, req)
}

// SubscriptionServiceHandler is implemented by servers of the swisscoin.v1.SubscriptionService service.
// SubscriptionService manages recurring expenses.
type SubscriptionServiceHandler interface {
	CreateSubscription(context.Context, *connect.Request[api.CreateSubscriptionRequest]) (*connect.Response[api.CreateSubscriptionResponse], error)
	GetSubscription(context.Context, *connect.Request[api.GetSubscriptionRequest]) (*connect.Response[api.GetSubscriptionResponse], error)
	PauseSubscription(context.Context, *connect.Request[api.PauseSubscriptionRequest]) (*connect.Response[api.PauseSubscriptionResponse], error)
	ResumeSubscription(context.Context, *connect.Request[api.ResumeSubscriptionRequest]) (*connect.Response[api.ResumeSubscriptionResponse], error)
	ChargeSubscription(context.Context, *connect.Request[api.ChargeSubscriptionRequest]) (*connect.Response[api.ChargeSubscriptionResponse], error)
}

// NewSubscriptionServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewSubscriptionServiceHandler(svc SubscriptionServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createSubscriptionHandler := connect.NewUnaryHandler(SubscriptionServiceCreateSubscriptionProcedure, svc.CreateSubscription, opts...)
	getSubscriptionHandler := connect.NewUnaryHandler(SubscriptionServiceGetSubscriptionProcedure, svc.GetSubscription, opts...)
	pauseSubscriptionHandler := connect.NewUnaryHandler(SubscriptionServicePauseSubscriptionProcedure, svc.PauseSubscription, opts...)
	resumeSubscriptionHandler := connect.NewUnaryHandler(SubscriptionServiceResumeSubscriptionProcedure, svc.ResumeSubscription, opts...)
	chargeSubscriptionHandler := connect.NewUnaryHandler(SubscriptionServiceChargeSubscriptionProcedure, svc.ChargeSubscription, opts...)
	return "/swisscoin.v1.SubscriptionService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case SubscriptionServiceCreateSubscriptionProcedure:
			createSubscriptionHandler.ServeHTTP(w, r)
		case SubscriptionServiceGetSubscriptionProcedure:
			getSubscriptionHandler.ServeHTTP(w, r)
		case SubscriptionServicePauseSubscriptionProcedure:
			pauseSubscriptionHandler.ServeHTTP(w, r)
		case SubscriptionServiceResumeSubscriptionProcedure:
			resumeSubscriptionHandler.ServeHTTP(w, r)
		case SubscriptionServiceChargeSubscriptionProcedure:
			chargeSubscriptionHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedSubscriptionServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedSubscriptionServiceHandler struct{}

func (UnimplementedSubscriptionServiceHandler) CreateSubscription(context.Context, *connect.Request[api.CreateSubscriptionRequest]) (*connect.Response[api.CreateSubscriptionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.SubscriptionService.CreateSubscription is not implemented"))
}

func (UnimplementedSubscriptionServiceHandler) GetSubscription(context.Context, *connect.Request[api.GetSubscriptionRequest]) (*connect.Response[api.GetSubscriptionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.SubscriptionService.GetSubscription is not implemented"))
}

func (UnimplementedSubscriptionServiceHandler) PauseSubscription(context.Context, *connect.Request[api.PauseSubscriptionRequest]) (*connect.Response[api.PauseSubscriptionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.SubscriptionService.PauseSubscription is not implemented"))
}

func (UnimplementedSubscriptionServiceHandler) ResumeSubscription(context.Context, *connect.Request[api.ResumeSubscriptionRequest]) (*connect.Response[api.ResumeSubscriptionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.SubscriptionService.ResumeSubscription is not implemented"))
}

func (UnimplementedSubscriptionServiceHandler) ChargeSubscription(context.Context, *connect.Request[api.ChargeSubscriptionRequest]) (*connect.Response[api.ChargeSubscriptionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.SubscriptionService.ChargeSubscription is not implemented"))
}
