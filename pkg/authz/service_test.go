package authz

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = `
[request_definition]
r = sub, act

[policy_definition]
p = sub, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.act == p.act
`

const testPolicy = `
# reader < editor
p, reader, view_docs
p, editor, edit_docs
g, editor, reader
p, owner, manage
`

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(Config{ModelText: testModel, PolicyText: testPolicy})
	require.NoError(t, err)
	return svc
}

func TestServiceHas(t *testing.T) {
	svc := newTestService(t)

	cases := []struct {
		role, perm string
		want       bool
	}{
		{"reader", "view_docs", true},
		{"reader", "edit_docs", false},
		{"editor", "edit_docs", true},
		{"editor", "view_docs", true},
		{"owner", "view_docs", false},
		{"ghost", "view_docs", false},
	}
	for _, tc := range cases {
		t.Run(tc.role+"/"+tc.perm, func(t *testing.T) {
			got, err := svc.Has(tc.role, tc.perm)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestServicePermissionsFor(t *testing.T) {
	svc := newTestService(t)
	universe := []string{"manage", "edit_docs", "view_docs"}

	got, err := svc.PermissionsFor("editor", universe)
	require.NoError(t, err)
	assert.Equal(t, []string{"edit_docs", "view_docs"}, got)

	got, err = svc.PermissionsFor("nobody", universe)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestServiceSubjects(t *testing.T) {
	svc := newTestService(t)
	assert.Equal(t, []string{"editor", "owner", "reader"}, svc.Subjects())
}

func TestServiceConfigValidation(t *testing.T) {
	_, err := NewService(Config{PolicyText: testPolicy})
	require.Error(t, err)

	_, err = NewService(Config{ModelText: testModel})
	require.Error(t, err)

	_, err = NewService(Config{ModelText: testModel, PolicyText: "p, only-two"})
	require.Error(t, err)

	_, err = NewService(Config{ModelText: testModel, PolicyText: "x, a, b"})
	require.Error(t, err)
}

func TestServiceReloadPolicyFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.csv")
	require.NoError(t, os.WriteFile(path, []byte("p, reader, view_docs\n"), 0o644))

	svc, err := NewService(Config{ModelText: testModel, PolicyPath: path})
	require.NoError(t, err)

	ok, err := svc.Has("reader", "edit_docs")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("p, reader, view_docs\np, reader, edit_docs\n"), 0o644))
	require.NoError(t, svc.ReloadPolicy(context.Background()))

	ok, err = svc.Has("reader", "edit_docs")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestServiceValidateHookRejectsReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.csv")
	require.NoError(t, os.WriteFile(path, []byte("p, reader, view_docs\n"), 0o644))

	svc, err := NewService(Config{
		ModelText:  testModel,
		PolicyPath: path,
		Validate: func(rules []Rule) error {
			for _, r := range rules {
				if r.Target == "manage" {
					return errors.New("manage is reserved")
				}
			}
			return nil
		},
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("p, reader, manage\n"), 0o644))
	require.Error(t, svc.ReloadPolicy(context.Background()))

	ok, err := svc.Has("reader", "view_docs")
	require.NoError(t, err)
	assert.True(t, ok, "previous policy stays active")
}

func TestParsePolicySkipsComments(t *testing.T) {
	rules, err := ParsePolicy("# header\n\n p , a , b \ng, c, a\n")
	require.NoError(t, err)
	assert.Equal(t, []Rule{
		{Section: SectionPolicy, Subject: "a", Target: "b"},
		{Section: SectionGrouping, Subject: "c", Target: "a"},
	}, rules)
}

func TestDenied(t *testing.T) {
	err := Denied([]string{"view_docs", "edit_docs"})
	assert.Equal(t, "missing permission: requires one of [view_docs, edit_docs]", err.Error())
	assert.Equal(t, "view_docs,edit_docs", err.Meta["required"])
}
