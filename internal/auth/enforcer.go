package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"modhub/backend/internal/models"
)

// Roles, from least to most privileged. Each role inherits the one before it.
const (
	RoleAnonymous = "anonymous"
	RoleUser      = "user"
	RoleAdmin     = "admin"
)

// Resources guarded by the enforcer.
const (
	ResourceMod          = "mod"
	ResourceComment      = "comment"
	ResourceAnnouncement = "announcement"
	ResourceUser         = "user"
	ResourceSupport      = "support"
	ResourceUpload       = "upload"
	ResourceChat         = "chat"
)

// Actions.
const (
	ActionRead     = "read"
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionRate     = "rate"
	ActionReport   = "report"
	ActionModerate = "moderate"
	ActionSend     = "send"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

var defaultPolicies = [][]string{
	{RoleAnonymous, ResourceMod, ActionRead},
	{RoleAnonymous, ResourceMod, ActionRate},
	{RoleAnonymous, ResourceComment, ActionRead},
	{RoleAnonymous, ResourceComment, ActionCreate},
	{RoleAnonymous, ResourceComment, ActionReport},
	{RoleAnonymous, ResourceAnnouncement, ActionRead},
	{RoleAnonymous, ResourceChat, ActionRead},

	{RoleUser, ResourceUser, ActionUpdate},
	{RoleUser, ResourceUser, ActionReport},
	{RoleUser, ResourceSupport, ActionCreate},
	{RoleUser, ResourceSupport, ActionRead},
	{RoleUser, ResourceUpload, ActionCreate},
	{RoleUser, ResourceChat, ActionSend},

	{RoleAdmin, ResourceMod, ActionCreate},
	{RoleAdmin, ResourceMod, ActionUpdate},
	{RoleAdmin, ResourceMod, ActionDelete},
	{RoleAdmin, ResourceComment, ActionModerate},
	{RoleAdmin, ResourceAnnouncement, ActionCreate},
	{RoleAdmin, ResourceAnnouncement, ActionDelete},
	{RoleAdmin, ResourceUser, ActionRead},
	{RoleAdmin, ResourceUser, ActionModerate},
	{RoleAdmin, ResourceSupport, ActionModerate},
}

var roleHierarchy = [][]string{
	{RoleUser, RoleAnonymous},
	{RoleAdmin, RoleUser},
}

// Enforcer answers role/resource/action questions from an in-memory casbin model.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}

	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	for _, policy := range defaultPolicies {
		if _, err := e.AddPolicy(policy[0], policy[1], policy[2]); err != nil {
			return nil, fmt.Errorf("failed to add policy %v: %w", policy, err)
		}
	}
	for _, link := range roleHierarchy {
		if _, err := e.AddGroupingPolicy(link[0], link[1]); err != nil {
			return nil, fmt.Errorf("failed to add role link %v: %w", link, err)
		}
	}

	return &Enforcer{enforcer: e}, nil
}

// Allowed reports whether role may perform action on resource.
func (e *Enforcer) Allowed(role, resource, action string) (bool, error) {
	ok, err := e.enforcer.Enforce(role, resource, action)
	if err != nil {
		return false, fmt.Errorf("permission check failed: %w", err)
	}
	return ok, nil
}

// RoleOf maps an account (nil for visitors) to its role.
func RoleOf(user *models.User) string {
	switch {
	case user == nil:
		return RoleAnonymous
	case user.IsAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Topics returns the realtime topics a socket opened by user may receive.
func Topics(user *models.User) []string {
	topics := []string{models.TopicPublic}
	if user == nil {
		return topics
	}
	topics = append(topics, models.UserTopic(user.ID))
	if user.IsAdmin {
		topics = append(topics, models.TopicAdmin)
	}
	return topics
}
