package model

import (
	"testing"
	"time"
)

func testRegistry() *Registry {
	return NewRegistry(
		map[Capability]*CapabilityConfig{
			CapabilityAnalysis: {
				Preferred: []string{"primary"},
				Fallback:  []string{"backup"},
			},
			CapabilityVision: {
				Preferred: []string{"vision-model"},
			},
		},
		map[string]*EndpointConfig{
			"primary":      {Provider: "openai", Model: "gpt-4o"},
			"backup":       {Provider: "ollama", URL: "http://localhost:11434/v1", Model: "llama3.2-vision"},
			"vision-model": {Provider: "anthropic", Model: "claude-sonnet-4-20250514"},
		},
	)
}

func TestResolve(t *testing.T) {
	r := testRegistry()

	if got := r.Resolve(CapabilityAnalysis); got != "primary" {
		t.Errorf("Resolve(analysis) = %q, want primary", got)
	}
	if got := r.Resolve(CapabilityVision); got != "vision-model" {
		t.Errorf("Resolve(vision) = %q, want vision-model", got)
	}
	// Unknown capability falls back to the default model.
	if got := r.Resolve(CapabilityFast); got != "default" {
		t.Errorf("Resolve(fast) = %q, want default", got)
	}
}

func TestGetFallbackChain(t *testing.T) {
	r := testRegistry()

	chain := r.GetFallbackChain(CapabilityAnalysis)
	if len(chain) != 2 || chain[0] != "primary" || chain[1] != "backup" {
		t.Errorf("unexpected chain: %v", chain)
	}

	// An unconfigured capability whose default model has no endpoint must
	// yield an empty chain, not a phantom entry.
	if got := r.GetFallbackChain(CapabilityFast); len(got) != 0 {
		t.Errorf("chain for unconfigured capability = %v, want empty", got)
	}

	// With an endpoint backing the default, the default becomes the chain.
	r.SetEndpoint("default", &EndpointConfig{Provider: "ollama", URL: "http://localhost:11434/v1", Model: "llama3.2"})
	if got := r.GetFallbackChain(CapabilityFast); len(got) != 1 || got[0] != "default" {
		t.Errorf("chain for defaulted capability = %v, want [default]", got)
	}
}

func TestParseCapability(t *testing.T) {
	tests := []struct {
		in   string
		want Capability
	}{
		{"analysis", CapabilityAnalysis},
		{"vision", CapabilityVision},
		{"fast", CapabilityFast},
		{"planning", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ParseCapability(tt.in); got != tt.want {
			t.Errorf("ParseCapability(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCircuitBreaker(t *testing.T) {
	r := testRegistry()
	r.SetHealthConfig(HealthConfig{FailureThreshold: 2, RecoveryTimeout: time.Hour})

	if !r.IsEndpointAvailable("primary") {
		t.Fatal("endpoint should start available")
	}

	r.MarkEndpointFailure("primary")
	if !r.IsEndpointAvailable("primary") {
		t.Fatal("one failure should not open the circuit")
	}

	r.MarkEndpointFailure("primary")
	if r.IsEndpointAvailable("primary") {
		t.Fatal("circuit should be open after reaching the threshold")
	}

	// The filtered chain skips the open endpoint but keeps the backup.
	chain := r.GetAvailableFallbackChain(CapabilityAnalysis)
	if len(chain) != 1 || chain[0] != "backup" {
		t.Errorf("unexpected filtered chain: %v", chain)
	}

	// Success closes the circuit again.
	r.MarkEndpointSuccess("primary")
	if !r.IsEndpointAvailable("primary") {
		t.Fatal("success should close the circuit")
	}
}

func TestAllUnavailableReturnsFullChain(t *testing.T) {
	r := testRegistry()
	r.SetHealthConfig(HealthConfig{FailureThreshold: 1, RecoveryTimeout: time.Hour})

	r.MarkEndpointFailure("primary")
	r.MarkEndpointFailure("backup")

	chain := r.GetAvailableFallbackChain(CapabilityAnalysis)
	if len(chain) != 2 {
		t.Errorf("expected the full chain when everything is unavailable, got %v", chain)
	}
}

func TestLoadFromJSON(t *testing.T) {
	data := []byte(`{
		"model_registry": {
			"capabilities": {
				"analysis": {"preferred": ["gpt-4o"], "fallback": ["local"]}
			},
			"endpoints": {
				"gpt-4o": {"provider": "openai", "model": "gpt-4o"},
				"local": {"provider": "ollama", "url": "http://localhost:11434/v1", "model": "llama3.2"}
			},
			"defaults": {"model": "gpt-4o"}
		}
	}`)

	r, err := LoadFromJSON(data)
	if err != nil {
		t.Fatalf("LoadFromJSON() error = %v", err)
	}

	if got := r.Resolve(CapabilityAnalysis); got != "gpt-4o" {
		t.Errorf("Resolve(analysis) = %q, want gpt-4o", got)
	}
	ep := r.GetEndpoint("local")
	if ep == nil || ep.Provider != "ollama" {
		t.Errorf("unexpected endpoint: %+v", ep)
	}
}

func TestDefaultRegistryCoversAllCapabilities(t *testing.T) {
	r := NewDefaultRegistry()

	for _, cap := range []Capability{CapabilityAnalysis, CapabilityVision, CapabilityFast} {
		chain := r.GetFallbackChain(cap)
		if len(chain) == 0 {
			t.Errorf("capability %s has no models", cap)
		}
		for _, name := range chain {
			if r.GetEndpoint(name) == nil {
				t.Errorf("capability %s references unconfigured endpoint %s", cap, name)
			}
		}
	}
}
