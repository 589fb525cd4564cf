package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/mmynk/swisscoin/internal/ledger"
	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/storage"
	"github.com/mmynk/swisscoin/pkg/api"
	"github.com/mmynk/swisscoin/pkg/api/apiconnect"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	apiconnect.UnimplementedGroupServiceHandler
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a new group with the caller as its first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
	)
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	members := dedupe(append([]string{self}, req.Msg.MemberIDs...))
	if err := checkParties(ctx, s.store, members...); err != nil {
		return nil, fail("CreateGroup", err)
	}

	group := &models.Group{
		Name:    req.Msg.Name,
		Members: members,
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, fail("CreateGroup", err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	group, err := memberGroup(ctx, s.store, self, req.Msg.GroupID)
	if err != nil {
		return nil, fail("GetGroup", err, "group_id", req.Msg.GroupID)
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)
	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups retrieves the groups the caller belongs to.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListGroups request received", "party_id", self)

	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		return nil, fail("ListGroups", err)
	}

	out := make([]*api.Group, 0, len(groups))
	for _, group := range groups {
		if group.HasMember(self) {
			out = append(out, toAPIGroup(group))
		}
	}

	slog.Info("ListGroups successful", "count", len(out))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddMembers adds parties to a group the caller belongs to.
func (s *GroupService) AddMembers(ctx context.Context, req *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddMembers request received",
		"group_id", req.Msg.GroupID,
		"members_count", len(req.Msg.PartyIDs),
	)
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	if _, err := memberGroup(ctx, s.store, self, req.Msg.GroupID); err != nil {
		return nil, fail("AddMembers", err, "group_id", req.Msg.GroupID)
	}
	partyIDs := dedupe(req.Msg.PartyIDs)
	if err := checkParties(ctx, s.store, partyIDs...); err != nil {
		return nil, fail("AddMembers", err, "group_id", req.Msg.GroupID)
	}
	if err := s.store.AddGroupMembers(ctx, req.Msg.GroupID, partyIDs); err != nil {
		return nil, fail("AddMembers", err, "group_id", req.Msg.GroupID)
	}

	// Fetch updated group to get the full member list
	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, fail("AddMembers", err, "group_id", req.Msg.GroupID)
	}

	slog.Info("Group members added", "group_id", group.ID, "members_count", len(group.Members))
	return connect.NewResponse(&api.AddMembersResponse{Group: toAPIGroup(group)}), nil
}

// CreateParty registers a party without an account.
func (s *GroupService) CreateParty(ctx context.Context, req *connect.Request[api.CreatePartyRequest]) (*connect.Response[api.CreatePartyResponse], error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}
	slog.Info("CreateParty request received", "name", req.Msg.Name)
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	party, err := ledger.NewParty(req.Msg.Name)
	if err != nil {
		return nil, fail("CreateParty", err)
	}
	if err := s.store.CreateParty(ctx, party); err != nil {
		return nil, fail("CreateParty", err)
	}

	slog.Info("Party created", "party_id", party.ID)
	return connect.NewResponse(&api.CreatePartyResponse{Party: toAPIParty(party)}), nil
}

// ListParties lists every known party.
func (s *GroupService) ListParties(ctx context.Context, req *connect.Request[api.ListPartiesRequest]) (*connect.Response[api.ListPartiesResponse], error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}
	slog.Info("ListParties request received")

	parties, err := s.store.ListParties(ctx)
	if err != nil {
		return nil, fail("ListParties", err)
	}
	out := make([]*api.Party, len(parties))
	for i, p := range parties {
		out[i] = toAPIParty(p)
	}
	return connect.NewResponse(&api.ListPartiesResponse{Parties: out}), nil
}

// dedupe drops repeated IDs, keeping first occurrences in order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
