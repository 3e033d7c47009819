package go_akrypt

import (
	"errors"
	"strings"
	"testing"
)

type testObject struct {
	id int
}

// countingDestructor returns a destructor and a pointer to the number of times it ran.
func countingDestructor() (DestructorFunc, *int) {
	calls := 0
	return func(object interface{}) { calls++ }, &calls
}

func TestNewOpaqueNode(t *testing.T) {
	destructor, calls := countingDestructor()
	node, err := NewOpaqueNode(&testObject{id: 1}, Handle(0x1000001), ENGINE_KEY, "signing key", destructor)
	if err != nil {
		t.Fatalf("NewOpaqueNode() error = %v", err)
	}

	info := node.Info()
	if info.Handle != Handle(0x1000001) {
		t.Errorf("Handle = %s, want 0x1000001", info.Handle)
	}
	if info.Engine != ENGINE_KEY {
		t.Errorf("Engine = %s, want key", info.Engine)
	}
	if info.Description != "signing key" {
		t.Errorf("Description = %q, want %q", info.Description, "signing key")
	}
	if info.Status != NODE_UNMODIFIED {
		t.Errorf("Status = %s, want unmodified", info.Status)
	}
	if !node.IsLive() {
		t.Error("IsLive() = false for a new node")
	}
	if *calls != 0 {
		t.Errorf("destructor called %d times during construction", *calls)
	}
}

func TestNewOpaqueNode_Errors(t *testing.T) {
	destructor, calls := countingDestructor()
	var typedNil *testObject

	tests := []struct {
		name        string
		object      interface{}
		description string
		destructor  DestructorFunc
		wantErr     error
	}{
		{"nil object", nil, "x", destructor, ErrNullArgument},
		{"typed nil object", typedNil, "x", destructor, ErrNullArgument},
		{"nil destructor", &testObject{}, "x", nil, ErrNullArgument},
		{"description too long", &testObject{}, strings.Repeat("d", NODE_DESCRIPTION_MAX+1), destructor, ErrWrongLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := NewOpaqueNode(tt.object, Handle(1), ENGINE_KEY, tt.description, tt.destructor)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewOpaqueNode() error = %v, want %v", err, tt.wantErr)
			}
			if node != nil {
				t.Error("NewOpaqueNode() returned a node on failure")
			}
		})
	}
	if *calls != 0 {
		t.Errorf("destructor called %d times on failed construction, want 0", *calls)
	}
}

func TestOpaqueNode_DescriptionStopsAtNUL(t *testing.T) {
	destructor, _ := countingDestructor()
	node, err := NewOpaqueNode(&testObject{}, Handle(1), ENGINE_HASH_FUNCTION, "sha512\x00garbage", destructor)
	if err != nil {
		t.Fatalf("NewOpaqueNode() error = %v", err)
	}
	if got := node.Description(); got != "sha512" {
		t.Errorf("Description() = %q, want %q", got, "sha512")
	}

	if err := node.SetDescription("renamed"); err != nil {
		t.Fatalf("SetDescription() error = %v", err)
	}
	if got := node.Description(); got != "renamed" {
		t.Errorf("Description() = %q, want %q", got, "renamed")
	}
}

func TestOpaqueNode_Destroy(t *testing.T) {
	destructor, calls := countingDestructor()
	node, err := NewOpaqueNode(&testObject{}, Handle(7), ENGINE_BLOCK_CIPHER, "cipher", destructor)
	if err != nil {
		t.Fatalf("NewOpaqueNode() error = %v", err)
	}
	node.MarkModified()

	if err := node.Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if *calls != 1 {
		t.Errorf("destructor called %d times, want 1", *calls)
	}

	if node.Object() != nil {
		t.Error("Object() not nil after Destroy")
	}
	if node.Handle() != WrongHandle {
		t.Errorf("Handle() = %s after Destroy, want wrong-handle", node.Handle())
	}
	if node.Engine() != ENGINE_UNDEFINED {
		t.Errorf("Engine() = %s after Destroy, want undefined", node.Engine())
	}
	if node.Status() != NODE_UNDEFINED {
		t.Errorf("Status() = %s after Destroy, want undefined", node.Status())
	}
	if node.Description() != "" {
		t.Errorf("Description() = %q after Destroy, want empty", node.Description())
	}
	if node.IsLive() {
		t.Error("IsLive() = true after Destroy")
	}

	if err := node.Destroy(); !errors.Is(err, ErrNullArgument) {
		t.Errorf("second Destroy() error = %v, want ErrNullArgument", err)
	}
	if *calls != 1 {
		t.Errorf("destructor called %d times after double Destroy, want 1", *calls)
	}

	var absent *OpaqueNode
	if err := absent.Destroy(); !errors.Is(err, ErrNullArgument) {
		t.Errorf("nil Destroy() error = %v, want ErrNullArgument", err)
	}

	if err := node.SetStatus(NODE_MODIFIED); !errors.Is(err, ErrUnexpectedState) {
		t.Errorf("SetStatus after Destroy error = %v, want ErrUnexpectedState", err)
	}
	if err := node.SetDescription("x"); !errors.Is(err, ErrUnexpectedState) {
		t.Errorf("SetDescription after Destroy error = %v, want ErrUnexpectedState", err)
	}
}

func TestOpaqueNode_Status(t *testing.T) {
	destructor, _ := countingDestructor()
	node, _ := NewOpaqueNode(&testObject{}, Handle(1), ENGINE_MAC_FUNCTION, "", destructor)

	if err := node.MarkModified(); err != nil {
		t.Fatalf("MarkModified() error = %v", err)
	}
	if node.Status() != NODE_MODIFIED {
		t.Errorf("Status() = %s, want modified", node.Status())
	}
	if err := node.SetStatus(NODE_UNMODIFIED); err != nil {
		t.Fatalf("SetStatus(unmodified) error = %v", err)
	}
	if err := node.SetStatus(NODE_UNDEFINED); !errors.Is(err, ErrUnexpectedState) {
		t.Errorf("SetStatus(undefined) error = %v, want ErrUnexpectedState", err)
	}
	if node.Status() != NODE_UNMODIFIED {
		t.Errorf("Status() = %s after rejected update, want unmodified", node.Status())
	}
}

func TestFreeObject(t *testing.T) {
	fn, _ := LookupHashFunction("sha256")
	ctx, _ := NewHashContext(fn)

	freeObject(ctx)
	if err := ctx.Free(); !errors.Is(err, ErrUnexpectedState) {
		t.Errorf("Free after freeObject error = %v, want ErrUnexpectedState", err)
	}

	// Objects without Free and failing Free calls are tolerated.
	freeObject(&testObject{})
	freeObject(ctx)
}

func TestHandle_String(t *testing.T) {
	if got := WrongHandle.String(); got != "wrong-handle" {
		t.Errorf("WrongHandle.String() = %q", got)
	}
	h := makeHandle(0x5, 0x10)
	if got := h.String(); got != "0x5000010" {
		t.Errorf("String() = %q, want 0x5000010", got)
	}
	if h.slot() != 0x10 || h.tag() != 0x5 {
		t.Errorf("slot/tag = %#x/%#x, want 0x10/0x5", h.slot(), h.tag())
	}
	largest := makeHandle(HANDLE_TAG_MASK, HANDLE_SLOT_MASK)
	if largest < 0 || largest.tag() != HANDLE_TAG_MASK || largest.slot() != HANDLE_SLOT_MASK {
		t.Errorf("makeHandle(max) = %s decodes to tag %#x slot %#x", largest, largest.tag(), largest.slot())
	}
}
