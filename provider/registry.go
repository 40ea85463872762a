package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Method is a gateway payment method handle
type Method interface {
	// Name returns the identifier the method is registered under
	Name() string

	// Code returns the payment method code sent to the gateway
	Code() string
}

// MethodFactory is a function type that creates a new Method
type MethodFactory func() Method

// MethodRegistry maps case-insensitive method identifiers to payment method handles
type MethodRegistry struct {
	methods map[string]MethodFactory
	mu      sync.RWMutex
}

// NewMethodRegistry creates a new method registry
func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{
		methods: make(map[string]MethodFactory),
	}
}

func normalizeMethodName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds a payment method factory to the registry
func (r *MethodRegistry) Register(name string, factory MethodFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[normalizeMethodName(name)] = factory
}

// Get retrieves a payment method factory by identifier
func (r *MethodRegistry) Get(name string) (MethodFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.methods[normalizeMethodName(name)]
	if !exists {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownPaymentMethod, name)
	}

	return factory, nil
}

// CreateMethod creates a new instance of a payment method handle
func (r *MethodRegistry) CreateMethod(name string) (Method, error) {
	factory, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	return factory(), nil
}

// MethodNames returns the sorted identifiers of all registered methods
func (r *MethodRegistry) MethodNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// DefaultMethods is the global default method registry
var DefaultMethods = NewMethodRegistry()

// RegisterMethod registers a method with the default registry
func RegisterMethod(name string, factory MethodFactory) {
	DefaultMethods.Register(name, factory)
}

// CreateMethod creates a method handle from the default registry
func CreateMethod(name string) (Method, error) {
	return DefaultMethods.CreateMethod(name)
}
