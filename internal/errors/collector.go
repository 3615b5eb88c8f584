package errors

import (
	"sync"
)

// ErrorCollector aggregates the recoverable errors raised during one
// directive pass so the caller can inspect them after Apply returns.
// Collection never interrupts the pass.
type ErrorCollector struct {
	errors []*EngineError
	mutex  sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		errors: make([]*EngineError, 0),
	}
}

// Add records an engine error. Nil errors are ignored.
func (ec *ErrorCollector) Add(err *EngineError) {
	if err == nil {
		return
	}
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = append(ec.errors, err)
}

// Errors returns a copy of all collected errors.
func (ec *ErrorCollector) Errors() []*EngineError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]*EngineError, len(ec.errors))
	copy(result, ec.errors)
	return result
}

// ByType returns collected errors of the given type.
func (ec *ErrorCollector) ByType(t ErrorType) []*EngineError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	var result []*EngineError
	for _, err := range ec.errors {
		if err.Type == t {
			result = append(result, err)
		}
	}
	return result
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.errors) > 0
}

// Clear clears all errors
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = ec.errors[:0]
}
