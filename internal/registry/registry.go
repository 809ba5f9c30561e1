// Package registry holds the static list of monitored service descriptors.
// The registry is loaded once at startup and never mutated afterwards.
package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServiceDescriptor identifies one monitored backend service.
type ServiceDescriptor struct {
	Name       string `yaml:"name"`
	Address    string `yaml:"address"`
	Port       int    `yaml:"port"`
	Critical   bool   `yaml:"critical"`
	HealthPath string `yaml:"health_path"`
}

// URL returns the full health endpoint URL for the descriptor.
func (d ServiceDescriptor) URL() string {
	return fmt.Sprintf("http://%s:%d%s", d.Address, d.Port, d.HealthPath)
}

// Registry is the immutable set of monitored services.
type Registry struct {
	services []ServiceDescriptor
}

type registryFile struct {
	Services []ServiceDescriptor `yaml:"services"`
}

// Load reads and validates a registry from a YAML file. Any validation
// failure is fatal to startup; the registry is never reloaded at runtime.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return New(f.Services)
}

// New validates descriptors and builds a registry.
func New(descriptors []ServiceDescriptor) (*Registry, error) {
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("registry is empty: at least one service is required")
	}
	seen := make(map[string]bool, len(descriptors))
	out := make([]ServiceDescriptor, 0, len(descriptors))
	for i, d := range descriptors {
		if d.Name == "" {
			return nil, fmt.Errorf("service %d: name is required", i)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("service %q: duplicate name", d.Name)
		}
		seen[d.Name] = true
		if d.Address == "" {
			return nil, fmt.Errorf("service %q: address is required", d.Name)
		}
		if d.Port <= 0 || d.Port > 65535 {
			return nil, fmt.Errorf("service %q: invalid port %d", d.Name, d.Port)
		}
		if d.HealthPath == "" {
			d.HealthPath = "/health"
		}
		out = append(out, d)
	}
	return &Registry{services: out}, nil
}

// Services returns the descriptors. Callers must not modify the slice.
func (r *Registry) Services() []ServiceDescriptor { return r.services }

// Len returns the number of registered services.
func (r *Registry) Len() int { return len(r.services) }

// Lookup returns the descriptor with the given name.
func (r *Registry) Lookup(name string) (ServiceDescriptor, bool) {
	for _, d := range r.services {
		if d.Name == name {
			return d, true
		}
	}
	return ServiceDescriptor{}, false
}
