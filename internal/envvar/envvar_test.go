package envvar_test

import (
	"errors"
	"testing"

	envvar "github.com/taskhive/taskhive-api/internal/envvar"
)

type providerStub struct {
	values map[string]string
	err    error
}

func (p providerStub) Get(key string) (string, error) {
	if p.err != nil {
		return "", p.err
	}

	return p.values[key], nil
}

func TestConfigurationGet(t *testing.T) {
	t.Run("plain environment value", func(t *testing.T) {
		t.Setenv("DATABASE_HOST", "localhost")

		conf := envvar.New(providerStub{})

		got, err := conf.Get("DATABASE_HOST")
		if err != nil {
			t.Fatalf("expected no error, got %s", err)
		}

		if got != "localhost" {
			t.Fatalf("expected %q, got %q", "localhost", got)
		}
	})

	t.Run("secure indirection wins over the plain value", func(t *testing.T) {
		t.Setenv("DATABASE_PASSWORD", "plain")
		t.Setenv("DATABASE_PASSWORD_SECURE", "/database:password")

		conf := envvar.New(providerStub{
			values: map[string]string{"/database:password": "secret"},
		})

		got, err := conf.Get("DATABASE_PASSWORD")
		if err != nil {
			t.Fatalf("expected no error, got %s", err)
		}

		if got != "secret" {
			t.Fatalf("expected %q, got %q", "secret", got)
		}
	})

	t.Run("provider failure propagates", func(t *testing.T) {
		t.Setenv("DATABASE_PASSWORD_SECURE", "/database:password")

		conf := envvar.New(providerStub{err: errors.New("sealed")})

		if _, err := conf.Get("DATABASE_PASSWORD"); err == nil {
			t.Fatal("expected error, got none")
		}
	})

	t.Run("unset key resolves to empty", func(t *testing.T) {
		conf := envvar.New(providerStub{})

		got, err := conf.Get("NEVER_SET_KEY")
		if err != nil {
			t.Fatalf("expected no error, got %s", err)
		}

		if got != "" {
			t.Fatalf("expected empty value, got %q", got)
		}
	})
}
