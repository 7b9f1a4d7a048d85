package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/hiring-api/internal/domain/auth"
	"github.com/target/hiring-api/internal/domain/model"
)

func TestPrintUsageListsCommandsSorted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))

	out := buf.String()
	require.Contains(t, out, "Usage: hiring-admin <command> [flags]")
	assert.Less(t, strings.Index(out, "db-reset"), strings.Index(out, "migrate"))
	for name := range commands() {
		assert.Contains(t, out, name)
	}
}

func TestParseFlags(t *testing.T) {
	opts, err := parseDBResetFlags([]string{"--yes", "--seed", "--timeout", "30s"})
	require.NoError(t, err)
	assert.Equal(t, dbResetOptions{Timeout: 30 * time.Second, Yes: true, Seed: true}, opts)

	_, err = parseMigrateFlags([]string{"--timeout", "0s"})
	require.ErrorContains(t, err, "--timeout")

	seed, err := parseDBSeedFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultMigrationTimeout, seed.Timeout)

	users, err := parseListUsersFlags([]string{"--role", "Job Seeker", "--limit", "10"})
	require.NoError(t, err)
	require.NotNil(t, users.Role)
	assert.Equal(t, domainauth.RoleJobSeeker, *users.Role)
	assert.Equal(t, 10, users.Limit)

	_, err = parseListUsersFlags([]string{"--role", "owner"})
	require.ErrorContains(t, err, "unknown role")

	apps, err := parseListApplicationsFlags([]string{"--status", "ACCEPTED", "--employer-id", " emp-1 "})
	require.NoError(t, err)
	require.NotNil(t, apps.Status)
	assert.Equal(t, model.ApplicationAccepted, *apps.Status)
	assert.Equal(t, "emp-1", apps.EmployerID)

	_, err = parseListApplicationsFlags([]string{"--limit", "1000"})
	require.ErrorContains(t, err, "--limit")
}

func TestIsLikelyRemoteHost(t *testing.T) {
	for host, want := range map[string]bool{
		"":                false,
		"localhost":       false,
		"127.0.0.1":       false,
		"::1":             false,
		"db.local":        false,
		"10.1.2.3":        true,
		"db.prod.example": true,
	} {
		assert.Equal(t, want, isLikelyRemoteHost(host), host)
	}
}

func TestResetStatements(t *testing.T) {
	stmts := resetStatements(`we"ird`)
	require.Len(t, stmts, 4)
	assert.Equal(t, `GRANT ALL ON SCHEMA public TO "we""ird"`, stmts[3])
	assert.Len(t, resetStatements("public"), 3)
}

func TestConfirmReset(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, confirmReset(resetConfirmation{yes: true}, strings.NewReader(""), &out))
	assert.Empty(t, out.String())

	require.NoError(t, confirmReset(resetConfirmation{target: "db"}, strings.NewReader("yes\n"), &out))

	out.Reset()
	err := confirmReset(resetConfirmation{yes: true, remoteHost: "db.prod"}, strings.NewReader("n\n"), &out)
	require.ErrorContains(t, err, "aborted")
	assert.Contains(t, out.String(), `Host "db.prod" appears to be remote`)
}

func TestRequireRemoteHostConfirmation(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, requireRemoteHostConfirmation("seed", "db.prod", strings.NewReader("db.prod\n"), &out))
	require.Error(t, requireRemoteHostConfirmation("seed", "db.prod", strings.NewReader("\n"), &out))
}

func TestRenderTables(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderUsers(&buf, nil))
	assert.Equal(t, "No users found.\n", buf.String())

	buf.Reset()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, renderUsers(&buf, []*model.User{{
		ID: "u1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Role: domainauth.RoleJobSeeker, CreatedAt: created,
	}}))
	assert.Contains(t, buf.String(), "Ada Lovelace")
	assert.Contains(t, buf.String(), "2026-01-02T03:04:05Z")

	buf.Reset()
	require.NoError(t, renderApplications(&buf, []*model.ApplicationView{{
		Application: model.Application{ID: "a1", JobID: "j1", ApplicantID: "u1", Status: model.ApplicationPending, UpdatedAt: created},
		Job:         &model.JobSummary{ID: "j1", Title: "Backend Engineer"},
	}}))
	assert.Contains(t, buf.String(), "Backend Engineer")
	assert.Contains(t, buf.String(), "u1")
}
