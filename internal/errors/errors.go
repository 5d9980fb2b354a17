package errors

import (
	"sync"
)

// ErrorCollector collects non-fatal errors raised while a run continues.
type ErrorCollector struct {
	errors []error
	mutex  sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		errors: make([]error, 0),
	}
}

// AddError adds an error to the collector
func (ec *ErrorCollector) AddError(err error) {
	if err == nil {
		return
	}
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = append(ec.errors, err)
}

// GetAllErrors returns a copy of all collected errors
func (ec *ErrorCollector) GetAllErrors() []error {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]error, len(ec.errors))
	copy(result, ec.errors)
	return result
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.errors) > 0
}

// GetErrorsByType returns the collected DwfErrors of the given type.
func (ec *ErrorCollector) GetErrorsByType(typ ErrorType) []*DwfError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	var matched []*DwfError
	for _, err := range ec.errors {
		if de, ok := err.(*DwfError); ok && de.Type == typ {
			matched = append(matched, de)
		}
	}
	return matched
}
