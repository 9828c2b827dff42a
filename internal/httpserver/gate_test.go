package httpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campuskul/crm-console-api/internal/session"
)

func ownerSession() *session.Session {
	return &session.Session{UserID: 1, OrganizationID: 42, Role: session.RoleOwner}
}

func employeeSession() *session.Session {
	return &session.Session{UserID: 7, OrganizationID: 42, Role: session.RoleEmployee}
}

func TestResolveRoute(t *testing.T) {
	tests := []struct {
		name string
		path string
		sess *session.Session
		want GateDecision
	}{
		{
			name: "anonymous public page renders",
			path: "/login",
			sess: nil,
			want: GateDecision{Action: GateRender},
		},
		{
			name: "anonymous protected page redirects to login",
			path: "/owner/lead/list",
			sess: nil,
			want: GateDecision{Action: GateRedirect, Target: "/login"},
		},
		{
			name: "anonymous root redirects to login",
			path: "/",
			sess: nil,
			want: GateDecision{Action: GateRedirect, Target: "/login"},
		},
		{
			name: "authenticated user bounced off login",
			path: "/login",
			sess: ownerSession(),
			want: GateDecision{Action: GateRedirect, Target: "/owner/dashboard"},
		},
		{
			name: "authenticated root goes home",
			path: "/",
			sess: employeeSession(),
			want: GateDecision{Action: GateRedirect, Target: "/employee/dashboard"},
		},
		{
			name: "owner renders own subtree",
			path: "/owner/lead/list",
			sess: ownerSession(),
			want: GateDecision{Action: GateRender},
		},
		{
			name: "owner on employee subtree keeps the page",
			path: "/employee/lead/list",
			sess: ownerSession(),
			want: GateDecision{Action: GateRedirect, Target: "/owner/lead/list"},
		},
		{
			name: "employee on owner subtree keeps the page",
			path: "/owner/follow-up",
			sess: employeeSession(),
			want: GateDecision{Action: GateRedirect, Target: "/employee/follow-up"},
		},
		{
			name: "bare wrong role prefix goes home",
			path: "/employee",
			sess: ownerSession(),
			want: GateDecision{Action: GateRedirect, Target: "/owner/dashboard"},
		},
		{
			name: "authenticated unknown subtree is not found",
			path: "/admin/settings",
			sess: ownerSession(),
			want: GateDecision{Action: GateNotFound},
		},
		{
			name: "trailing slash is normalized",
			path: "/owner/dashboard/",
			sess: ownerSession(),
			want: GateDecision{Action: GateRender},
		},
		{
			name: "missing leading slash is normalized",
			path: "login",
			sess: nil,
			want: GateDecision{Action: GateRender},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRoute(tt.path, tt.sess)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitRolePrefix(t *testing.T) {
	prefix, suffix := splitRolePrefix("/owner/lead/list")
	assert.Equal(t, "owner", prefix)
	assert.Equal(t, "/lead/list", suffix)

	prefix, suffix = splitRolePrefix("/employee")
	assert.Equal(t, "employee", prefix)
	assert.Equal(t, "", suffix)

	// A path that merely starts with a role name is not in that subtree.
	prefix, _ = splitRolePrefix("/ownership/report")
	assert.Equal(t, "", prefix)
}
