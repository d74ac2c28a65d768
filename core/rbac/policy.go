package rbac

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

type Permission = string

const (
	PermKendalaView   Permission = "kendala.view"
	PermKendalaManage Permission = "kendala.manage"
	PermKendalaSubmit Permission = "kendala.submit"
	PermReferenceView Permission = "reference.view"
	PermAccountsView  Permission = "accounts.view"
	PermExportRun     Permission = "export.run"
)

const rbacModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj
`

// Default role grants. Admins run the dashboard; operators only see their
// own kendala and submit resolution evidence.
var defaultGrants = map[string][]Permission{
	"admin": {
		PermKendalaView,
		PermKendalaManage,
		PermReferenceView,
		PermAccountsView,
		PermExportRun,
	},
	"operator": {
		PermKendalaView,
		PermKendalaSubmit,
	},
}

// Policy answers role/permission checks over a casbin enforcer holding the
// built-in grants.
type Policy struct {
	enforcer *casbin.Enforcer
}

func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	for role, perms := range defaultGrants {
		for _, perm := range perms {
			if _, err := e.AddPolicy(role, string(perm)); err != nil {
				return nil, err
			}
		}
	}
	return &Policy{enforcer: e}, nil
}

func MustNewPolicy() *Policy {
	p, err := NewPolicy()
	if err != nil {
		panic(err)
	}
	return p
}

// Allowed reports whether any of the roles grants the permission.
func (p *Policy) Allowed(roles []string, perm Permission) bool {
	if p == nil || p.enforcer == nil {
		return false
	}
	for _, role := range roles {
		ok, err := p.enforcer.Enforce(role, string(perm))
		if err == nil && ok {
			return true
		}
	}
	return false
}

// AllowedRole is the single-role convenience used with session records.
func (p *Policy) AllowedRole(role string, perm Permission) bool {
	return p.Allowed([]string{role}, perm)
}
