package shape

import (
	"errors"
	"sync"
	"testing"

	"github.com/danmuck/ensiwire/internal/testutil/testlog"
)

func TestRegistryLookup(t *testing.T) {
	testlog.Start(t)
	reg, err := RegistryFrom(map[string]string{
		"addr": "seq<addr>",
		"ping": "u64",
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	s, ok := reg.Lookup("addr")
	if !ok || s.String() != "seq<addr>" {
		t.Fatalf("lookup addr = %v, %v", s, ok)
	}
	if _, ok := reg.Lookup("pong"); ok {
		t.Fatalf("unexpected pong binding")
	}
	names := reg.Names()
	if len(names) != 2 || names[0] != "addr" || names[1] != "ping" {
		t.Fatalf("names = %v", names)
	}
}

func TestRegistryRejectsBadExpression(t *testing.T) {
	testlog.Start(t)
	_, err := RegistryFrom(map[string]string{"inv": "seq<hash"})
	var syn SyntaxError
	if !errors.As(err, &syn) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
	if err := NewRegistry().Register("", "u8"); err == nil {
		t.Fatalf("expected empty type error")
	}
}

func TestRegistryConcurrentRegister(t *testing.T) {
	testlog.Start(t)
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := reg.Register("getblocks", "seq<hash>"); err != nil {
				t.Errorf("register: %v", err)
			}
			reg.Lookup("getblocks")
		}()
	}
	wg.Wait()
	if got := reg.Names(); len(got) != 1 {
		t.Fatalf("names = %v", got)
	}
}
