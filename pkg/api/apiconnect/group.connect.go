package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/swisscoin/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService service.
const GroupServiceName = "swisscoin.v1.GroupService"

// Procedure names for the GroupService RPCs.
const (
	GroupServiceCreateGroupProcedure = "/swisscoin.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure    = "/swisscoin.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure  = "/swisscoin.v1.GroupService/ListGroups"
	GroupServiceAddMembersProcedure  = "/swisscoin.v1.GroupService/AddMembers"
	GroupServiceCreatePartyProcedure = "/swisscoin.v1.GroupService/CreateParty"
	GroupServiceListPartiesProcedure = "/swisscoin.v1.GroupService/ListParties"
)

// GroupServiceClient is a client for the swisscoin.v1.GroupService service.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	AddMembers(context.Context, *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error)
	CreateParty(context.Context, *connect.Request[api.CreatePartyRequest]) (*connect.Response[api.CreatePartyResponse], error)
	ListParties(context.Context, *connect.Request[api.ListPartiesRequest]) (*connect.Response[api.ListPartiesResponse], error)
}

// NewGroupServiceClient constructs a client for the swisscoin.v1.GroupService service. The
// JSON codec is always used; opts may add interceptors or headers.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &groupServiceClient{
		createGroup: connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:    connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:  connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		addMembers:  connect.NewClient[api.AddMembersRequest, api.AddMembersResponse](httpClient, baseURL+GroupServiceAddMembersProcedure, opts...),
		createParty: connect.NewClient[api.CreatePartyRequest, api.CreatePartyResponse](httpClient, baseURL+GroupServiceCreatePartyProcedure, opts...),
		listParties: connect.NewClient[api.ListPartiesRequest, api.ListPartiesResponse](httpClient, baseURL+GroupServiceListPartiesProcedure, opts...),
	}
}

type groupServiceClient struct {
	createGroup *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup    *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups  *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	addMembers  *connect.Client[api.AddMembersRequest, api.AddMembersResponse]
	createParty *connect.Client[api.CreatePartyRequest, api.CreatePartyResponse]
	listParties *connect.Client[api.ListPartiesRequest, api.ListPartiesResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) AddMembers(ctx context.Context, req *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error) {
	return c.addMembers.CallUnary(ctx, req)
}

func (c *groupServiceClient) CreateParty(ctx context.Context, req *connect.Request[api.CreatePartyRequest]) (*connect.Response[api.CreatePartyResponse], error) {
	return c.createParty.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListParties(ctx context.Context, req *connect.Request[api.ListPartiesRequest]) (*connect.Response[api.ListPartiesResponse], error) {
	return c.listParties.CallUnary(ctx, req)
}

// GroupServiceHandler is implemented by servers of the swisscoin.v1.GroupService service.
// GroupService manages groups and parties.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	AddMembers(context.Context, *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error)
	CreateParty(context.Context, *connect.Request[api.CreatePartyRequest]) (*connect.Response[api.CreatePartyResponse], error)
	ListParties(context.Context, *connect.Request[api.ListPartiesRequest]) (*connect.Response[api.ListPartiesResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createGroupHandler := connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...)
	getGroupHandler := connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...)
	listGroupsHandler := connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...)
	addMembersHandler := connect.NewUnaryHandler(GroupServiceAddMembersProcedure, svc.AddMembers, opts...)
	createPartyHandler := connect.NewUnaryHandler(GroupServiceCreatePartyProcedure, svc.CreateParty, opts...)
	listPartiesHandler := connect.NewUnaryHandler(GroupServiceListPartiesProcedure, svc.ListParties, opts...)
	return "/swisscoin.v1.GroupService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case GroupServiceCreateGroupProcedure:
			createGroupHandler.ServeHTTP(w, r)
		case GroupServiceGetGroupProcedure:
			getGroupHandler.ServeHTTP(w, r)
		case GroupServiceListGroupsProcedure:
			listGroupsHandler.ServeHTTP(w, r)
		case GroupServiceAddMembersProcedure:
			addMembersHandler.ServeHTTP(w, r)
		case GroupServiceCreatePartyProcedure:
			createPartyHandler.ServeHTTP(w, r)
		case GroupServiceListPartiesProcedure:
			listPartiesHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedGroupServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedGroupServiceHandler struct{}

func (UnimplementedGroupServiceHandler) CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.GroupService.CreateGroup is not implemented"))
}

func (UnimplementedGroupServiceHandler) GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.GroupService.GetGroup is not implemented"))
}

func (UnimplementedGroupServiceHandler) ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.GroupService.ListGroups is not implemented"))
}

func (UnimplementedGroupServiceHandler) AddMembers(context.Context, *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.GroupService.AddMembers is not implemented"))
}

func (UnimplementedGroupServiceHandler) CreateParty(context.Context, *connect.Request[api.CreatePartyRequest]) (*connect.Response[api.CreatePartyResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.GroupService.CreateParty is not implemented"))
}

func (UnimplementedGroupServiceHandler) ListParties(context.Context, *connect.Request[api.ListPartiesRequest]) (*connect.Response[api.ListPartiesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("swisscoin.v1.GroupService.ListParties is not implemented"))
}
