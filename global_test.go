package go_akrypt

import (
	"errors"
	"testing"
)

func TestGlobalContextManager_Lifecycle(t *testing.T) {
	if _, err := GlobalContextManager(); !errors.Is(err, ErrManagerNotInitialized) {
		t.Fatalf("GlobalContextManager() before create error = %v, want ErrManagerNotInitialized", err)
	}
	if err := DestroyGlobalContextManager(); !errors.Is(err, ErrManagerNotInitialized) {
		t.Errorf("DestroyGlobalContextManager() before create error = %v, want ErrManagerNotInitialized", err)
	}

	cfg := DefaultConfig()
	cfg.ContextManagerSize = 2
	if err := CreateGlobalContextManager(cfg); err != nil {
		t.Fatalf("CreateGlobalContextManager() error = %v", err)
	}
	if err := CreateGlobalContextManager(cfg); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second CreateGlobalContextManager() error = %v, want ErrAlreadyInitialized", err)
	}

	cm, err := GlobalContextManager()
	if err != nil {
		t.Fatalf("GlobalContextManager() error = %v", err)
	}
	if cm.Capacity() != 2 {
		t.Errorf("Capacity() = %d, want 2", cm.Capacity())
	}
	if globalSettings().ContextManagerSize != 2 {
		t.Error("globalSettings() does not reflect the create config")
	}

	destructor, calls := countingDestructor()
	h, err := cm.Insert(&testObject{}, ENGINE_KEY, "global", destructor)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := DestroyGlobalContextManager(); err != nil {
		t.Fatalf("DestroyGlobalContextManager() error = %v", err)
	}
	if *calls != 1 {
		t.Errorf("destructor called %d times, want 1", *calls)
	}
	if _, err := cm.Lookup(h); !errors.Is(err, ErrHandleNotFound) {
		t.Errorf("Lookup after destroy error = %v, want ErrHandleNotFound", err)
	}
	if _, err := GlobalContextManager(); !errors.Is(err, ErrManagerNotInitialized) {
		t.Errorf("GlobalContextManager() after destroy error = %v, want ErrManagerNotInitialized", err)
	}
	if err := DestroyGlobalContextManager(); !errors.Is(err, ErrUnexpectedState) {
		t.Errorf("second DestroyGlobalContextManager() error = %v, want ErrUnexpectedState", err)
	}

	// The lifecycle can start over.
	if err := CreateGlobalContextManager(DefaultConfig()); err != nil {
		t.Fatalf("re-create error = %v", err)
	}
	if err := DestroyGlobalContextManager(); err != nil {
		t.Fatalf("re-destroy error = %v", err)
	}
}

func TestCreateGlobalContextManager_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ContextManagerSize = -1
	if err := CreateGlobalContextManager(cfg); !errors.Is(err, ErrWrongLength) {
		t.Errorf("CreateGlobalContextManager() error = %v, want ErrWrongLength", err)
	}
	if _, err := GlobalContextManager(); !errors.Is(err, ErrManagerNotInitialized) {
		t.Errorf("failed create left a manager behind: %v", err)
	}
}
