package rbac

import "testing"

func TestDefaultGrants(t *testing.T) {
	p := MustNewPolicy()
	cases := []struct {
		role string
		perm Permission
		want bool
	}{
		{"admin", PermKendalaManage, true},
		{"admin", PermExportRun, true},
		{"admin", PermKendalaSubmit, false},
		{"operator", PermKendalaView, true},
		{"operator", PermKendalaSubmit, true},
		{"operator", PermKendalaManage, false},
		{"operator", PermAccountsView, false},
		{"unknown", PermKendalaView, false},
	}
	for _, tc := range cases {
		if got := p.AllowedRole(tc.role, tc.perm); got != tc.want {
			t.Fatalf("%s / %s: expected %v, got %v", tc.role, tc.perm, tc.want, got)
		}
	}
}

func TestAllowedAcceptsAnyRole(t *testing.T) {
	p := MustNewPolicy()
	if !p.Allowed([]string{"unknown", "operator"}, PermKendalaSubmit) {
		t.Fatalf("expected grant through second role")
	}
	if p.Allowed(nil, PermKendalaView) {
		t.Fatalf("no roles must not be granted")
	}
}
