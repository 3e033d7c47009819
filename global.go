package go_akrypt

import "sync"

var (
	globalMu      sync.Mutex
	globalManager *ContextManager
	globalConfig  = DefaultConfig()
)

// CreateGlobalContextManager creates the process-wide context manager from cfg. It fails
// with ErrAlreadyInitialized if one exists.
func CreateGlobalContextManager(cfg Config) error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalManager != nil {
		return ErrAlreadyInitialized
	}
	cm, err := NewContextManagerWithConfig(cfg)
	if err != nil {
		return err
	}
	globalManager = cm
	globalConfig = cfg
	return nil
}

// DestroyGlobalContextManager destroys the process-wide context manager and every node it
// holds. It fails with ErrManagerNotInitialized if none exists.
func DestroyGlobalContextManager() error {
	globalMu.Lock()
	cm := globalManager
	globalManager = nil
	globalMu.Unlock()
	if cm == nil {
		return ErrManagerNotInitialized
	}
	return cm.Destroy()
}

// GlobalContextManager returns the process-wide context manager, or
// ErrManagerNotInitialized before CreateGlobalContextManager and after
// DestroyGlobalContextManager.
func GlobalContextManager() (*ContextManager, error) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalManager == nil {
		return nil, ErrManagerNotInitialized
	}
	return globalManager, nil
}

// globalSettings returns the configuration the global manager was created with.
func globalSettings() Config {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalConfig
}
