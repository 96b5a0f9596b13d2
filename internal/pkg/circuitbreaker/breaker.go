package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/givehub/payments/internal/pkg/logger"
	"github.com/givehub/payments/internal/pkg/security"
)

// State represents the circuit breaker state
type State int

const (
	// StateClosed allows requests to pass through
	StateClosed State = iota
	// StateOpen blocks requests and returns immediately
	StateOpen
	// StateHalfOpen allows a single trial request to test the processor
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Errors
var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("half-open trial already in flight")
)

// Config holds circuit breaker configuration
type Config struct {
	Name             string                                  // Adapter id, used for logging
	FailureThreshold uint32                                  // Consecutive failures that open the breaker
	Cooldown         time.Duration                           // Open duration before a half-open trial
	OnStateChange    func(name string, from State, to State) // State change callback
	IsFailure        func(err error) bool                    // Determines whether an error counts against the breaker
}

// DefaultConfig returns the default breaker configuration: the breaker opens
// after 3 consecutive failures and cools down for 30 seconds before
// admitting a single trial call.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 3,
		Cooldown:         30 * time.Second,
		IsFailure: func(err error) bool {
			return err != nil
		},
	}
}

// CircuitBreaker tracks consecutive failures for one payment gateway.
// State is shared by every transaction routed to that gateway and is
// updated atomically under a single mutex; in half-open exactly one trial
// call is admitted regardless of concurrent callers.
type CircuitBreaker struct {
	config Config
	logger *logger.ZapLogger

	mutex               sync.Mutex
	state               State
	consecutiveFailures uint32
	halfOpenInFlight    bool
	openedAt            time.Time
	lastFingerprint     string
}

// New creates a new circuit breaker
func New(config Config, l *logger.ZapLogger) *CircuitBreaker {
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}
	return &CircuitBreaker{
		config: config,
		logger: l,
		state:  StateClosed,
	}
}

// Execute runs fn under breaker protection. When the breaker is open the
// call fails immediately with ErrCircuitOpen and fn is never invoked.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := fn(ctx)

	cb.afterRequest(err)
	return err
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case StateClosed:
		return nil

	case StateOpen:
		if time.Since(cb.openedAt) < cb.config.Cooldown {
			return ErrCircuitOpen
		}
		cb.setState(StateHalfOpen)
		cb.halfOpenInFlight = true
		return nil

	case StateHalfOpen:
		if cb.halfOpenInFlight {
			return ErrTooManyRequests
		}
		cb.halfOpenInFlight = true
		return nil
	}

	return nil
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if cb.state == StateHalfOpen {
		cb.halfOpenInFlight = false
	}

	if cb.config.IsFailure(err) {
		cb.consecutiveFailures++

		fp := security.Fingerprint(err)
		if fp != "" && fp == cb.lastFingerprint {
			cb.logger.Debug("Repeated identical failure on gateway",
				logger.String("breaker", cb.config.Name),
				logger.String("fingerprint", fp),
				logger.Uint32("consecutive_failures", cb.consecutiveFailures))
		}
		cb.lastFingerprint = fp

		switch cb.state {
		case StateClosed:
			if cb.consecutiveFailures >= cb.config.FailureThreshold {
				cb.trip()
			}
		case StateHalfOpen:
			// Trial failed: reopen and restart the cooldown
			cb.trip()
		}
		return
	}

	cb.consecutiveFailures = 0
	cb.lastFingerprint = ""
	if cb.state == StateHalfOpen {
		cb.setState(StateClosed)
	}
}

func (cb *CircuitBreaker) trip() {
	cb.setState(StateOpen)
	cb.openedAt = time.Now()
}

func (cb *CircuitBreaker) setState(state State) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state

	cb.logger.Info("Circuit breaker state changed",
		logger.String("breaker", cb.config.Name),
		logger.String("from", prev.String()),
		logger.String("to", state.String()),
		logger.Uint32("consecutive_failures", cb.consecutiveFailures))

	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.config.Name, prev, state)
	}
}

// State returns the current state of the circuit breaker
func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

// ConsecutiveFailures returns the current consecutive failure count
func (cb *CircuitBreaker) ConsecutiveFailures() uint32 {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.consecutiveFailures
}

// Reset closes the breaker and clears its counters. Administrative use only.
func (cb *CircuitBreaker) Reset() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	cb.setState(StateClosed)
	cb.consecutiveFailures = 0
	cb.halfOpenInFlight = false
	cb.lastFingerprint = ""
}

// Name returns the circuit breaker name
func (cb *CircuitBreaker) Name() string {
	return cb.config.Name
}

// Manager owns one breaker per gateway id for the process lifetime.
type Manager struct {
	breakers map[string]*CircuitBreaker
	mutex    sync.RWMutex
	logger   *logger.ZapLogger
}

// NewManager creates a new circuit breaker manager
func NewManager(l *logger.ZapLogger) *Manager {
	return &Manager{
		breakers: make(map[string]*CircuitBreaker),
		logger:   l,
	}
}

// GetOrCreate gets an existing circuit breaker or creates a new one
func (m *Manager) GetOrCreate(name string, config Config) *CircuitBreaker {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if cb, exists := m.breakers[name]; exists {
		return cb
	}

	config.Name = name
	cb := New(config, m.logger)
	m.breakers[name] = cb

	m.logger.Info("Created new circuit breaker",
		logger.String("breaker", name),
		logger.Uint32("failure_threshold", config.FailureThreshold),
		logger.Duration("cooldown", config.Cooldown))

	return cb
}

// Get retrieves a circuit breaker by name
func (m *Manager) Get(name string) (*CircuitBreaker, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	cb, exists := m.breakers[name]
	return cb, exists
}

// Stats returns the state of every registered breaker
func (m *Manager) Stats() map[string]BreakerStats {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	stats := make(map[string]BreakerStats, len(m.breakers))
	for name, cb := range m.breakers {
		stats[name] = BreakerStats{
			Name:                name,
			State:               cb.State().String(),
			ConsecutiveFailures: cb.ConsecutiveFailures(),
		}
	}
	return stats
}

// BreakerStats holds a snapshot of one breaker
type BreakerStats struct {
	Name                string `json:"name"`
	State               string `json:"state"`
	ConsecutiveFailures uint32 `json:"consecutive_failures"`
}
