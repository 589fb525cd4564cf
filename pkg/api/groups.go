package api

// CreateGroupRequest creates a group. The caller is always a member.
type CreateGroupRequest struct {
	Name      string   `json:"name" validate:"required,max=100"`
	MemberIDs []string `json:"member_ids,omitempty" validate:"dive,required"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type AddMembersRequest struct {
	GroupID  string   `json:"group_id" validate:"required"`
	PartyIDs []string `json:"party_ids" validate:"required,min=1,dive,required"`
}

type AddMembersResponse struct {
	Group *Group `json:"group"`
}

// CreatePartyRequest registers a party without an account, e.g. a friend
// who does not use the app.
type CreatePartyRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CreatePartyResponse struct {
	Party *Party `json:"party"`
}

type ListPartiesRequest struct{}

type ListPartiesResponse struct {
	Parties []*Party `json:"parties"`
}
