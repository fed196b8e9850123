package session

import "testing"

func TestDefaultDecodersFixedOrder(t *testing.T) {
	r := DefaultDecoders()
	got := r.Names()
	want := []string{"efuse", "cobs", "slip", "hex", "ascii"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v, want %v", i, got, want)
		}
	}
}

func TestGetReturnsRegisteredCodec(t *testing.T) {
	r := DefaultDecoders()
	c, ok := r.Get("efuse")
	if !ok || c.Name() != "efuse" {
		t.Fatalf("expected efuse codec, got ok=%v c=%v", ok, c)
	}
}

func TestGetMissingCodec(t *testing.T) {
	r := DefaultDecoders()
	_, ok := r.Get("nonexistent")
	if ok {
		t.Fatal("expected ok=false for unregistered codec name")
	}
}
