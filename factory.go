package nexusflow

import (
	"fmt"
	"sync"
)

// ModuleCtor constructs a module instance with the given instance name.
type ModuleCtor func(name string) Module

// moduleFactory is the process-wide registry of module classes.
// Registration happens before Start; lookups during execution are
// read-only.
type moduleFactory struct {
	mu       sync.RWMutex
	creators map[string]ModuleCtor
}

var factory = &moduleFactory{creators: map[string]ModuleCtor{}}

// RegisterModule associates a class name with a constructor. A class
// may only be registered once.
func RegisterModule(className string, ctor ModuleCtor) error {
	if className == "" || ctor == nil {
		return fmt.Errorf("%w: class name and constructor are required", ErrInvalidConfig)
	}
	factory.mu.Lock()
	defer factory.mu.Unlock()
	if _, exists := factory.creators[className]; exists {
		return fmt.Errorf("%w: module class %q already registered", ErrInvalidConfig, className)
	}
	factory.creators[className] = ctor
	return nil
}

// MustRegisterModule is RegisterModule, panicking on failure. Intended
// for program-startup registration.
func MustRegisterModule(className string, ctor ModuleCtor) {
	if err := RegisterModule(className, ctor); err != nil {
		panic(err)
	}
}

// CreateModule instantiates a registered class and configures it with
// cfg. Unknown classes and Configure failures yield no module.
func CreateModule(className, instanceName string, cfg Config) (Module, error) {
	factory.mu.RLock()
	ctor, ok := factory.creators[className]
	factory.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModuleClass, className)
	}
	module := ctor(instanceName)
	if module == nil {
		return nil, fmt.Errorf("%w: constructor for %q returned nil", ErrUnknownModuleClass, className)
	}
	if err := module.Configure(cfg); err != nil {
		return nil, fmt.Errorf("configure %s (%s): %w", instanceName, className, err)
	}
	return module, nil
}
