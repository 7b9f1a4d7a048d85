package testutil

import (
	"testing"
)

func TestDefaultTestDBConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want TestDBConfig
	}{
		{
			name: "local compose profile",
			env:  map[string]string{},
			want: TestDBConfig{Host: "localhost", Port: "55432", User: "hiring", Password: "hiring", DBName: "hiring"},
		},
		{
			name: "ci overrides",
			env: map[string]string{
				"TEST_DB_HOST": "postgres",
				"TEST_DB_PORT": "5432",
				"TEST_DB_NAME": "hiring_ci",
			},
			want: TestDBConfig{Host: "postgres", Port: "5432", User: "hiring", Password: "hiring", DBName: "hiring_ci"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"TEST_DB_HOST", "TEST_DB_PORT", "TEST_DB_USER", "TEST_DB_PASSWORD", "TEST_DB_NAME"} {
				t.Setenv(key, tt.env[key])
			}
			if got := DefaultTestDBConfig(); got != tt.want {
				t.Errorf("DefaultTestDBConfig() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTestDBConfig_DSN(t *testing.T) {
	t.Setenv("DB_SSL_MODE", "")

	cfg := TestDBConfig{Host: "db", Port: "5432", User: "u", Password: "p@ss", DBName: "hiring"}
	want := "postgres://u:p%40ss@db:5432/hiring?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	t.Setenv("DB_SSL_MODE", "require")
	if got := cfg.DSN(); got != "postgres://u:p%40ss@db:5432/hiring?sslmode=require" {
		t.Errorf("DSN() with DB_SSL_MODE = %q", got)
	}
}

func TestEnvBool(t *testing.T) {
	for value, want := range map[string]bool{"": false, "1": true, "TRUE": true, "y": true, "no": false} {
		t.Setenv("TEST_REQUIRE_INFRA", value)
		if got := envBool("TEST_REQUIRE_INFRA"); got != want {
			t.Errorf("envBool(%q) = %v, want %v", value, got, want)
		}
	}
}

func TestBuilders(t *testing.T) {
	job := NewJob("job-1", "emp-1").WithTitle("Designer").Build()
	if job.EmployerID != "emp-1" || job.Title != "Designer" {
		t.Errorf("unexpected job fixture: %+v", job)
	}
	app := NewApplication("app-1", job.ID, "seeker-1").Build()
	if app.Status != "PENDING" {
		t.Errorf("expected PENDING fixture, got %s", app.Status)
	}
	u := Employer("emp-1").WithName("Acme", "Corp").Build()
	if u.DisplayName() != "Acme Corp" {
		t.Errorf("unexpected display name %q", u.DisplayName())
	}
}
