package model

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type staticProvider struct {
	name string
}

func (p staticProvider) Name() string                          { return p.name }
func (p staticProvider) Available(ctx context.Context) error   { return nil }
func (p staticProvider) Generate(ctx context.Context, model, prompt string) (string, error) {
	return "static", nil
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry(WithDefaultProvider("fake"))
	r.Register(staticProvider{name: "fake"})
	r.Register(staticProvider{name: "other"})

	p, err := r.Get("other")
	if err != nil {
		t.Fatalf("Get(other) error = %v", err)
	}
	if p.Name() != "other" {
		t.Errorf("Get(other).Name() = %q", p.Name())
	}

	p, err = r.Get("")
	if err != nil {
		t.Fatalf("Get(\"\") error = %v", err)
	}
	if p.Name() != "fake" {
		t.Errorf("default provider = %q, want fake", p.Name())
	}

	if _, err := r.Get("missing"); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("Get(missing) error = %v, want ErrUnknownProvider", err)
	}
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	r.Register(staticProvider{name: "zeta"})
	r.Register(staticProvider{name: "alpha"})

	if got, want := r.Names(), []string{"alpha", "zeta"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestCloudProvidersGatedByEnv(t *testing.T) {
	tests := []struct {
		provider Provider
		env      string
	}{
		{NewAnthropic(), "ANTHROPIC_API_KEY"},
		{NewOpenAI(), "OPENAI_API_KEY"},
		{NewGemini(), "GEMINI_API_KEY"},
	}
	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.provider.Name(), func(t *testing.T) {
			t.Setenv(tt.env, "")
			if err := tt.provider.Available(ctx); err == nil {
				t.Errorf("Available() = nil with %s unset", tt.env)
			}
			if _, err := tt.provider.Generate(ctx, "m", "p"); err == nil {
				t.Errorf("Generate() = nil error with %s unset", tt.env)
			}

			t.Setenv(tt.env, "test-key")
			if err := tt.provider.Available(ctx); err != nil {
				t.Errorf("Available() error = %v with %s set", err, tt.env)
			}
		})
	}
}
