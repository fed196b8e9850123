package asciicodec

import "testing"

func TestDecodePrintableBytesPassThrough(t *testing.T) {
	c := New()
	decoded, ok := c.Decode([]byte("hello"))
	if !ok {
		t.Fatal("ascii decode must never fail")
	}
	if decoded.Fields[0].Value.String != "hello" {
		t.Fatalf("text = %q, want %q", decoded.Fields[0].Value.String, "hello")
	}
}

func TestDecodeNonPrintableMappedToDot(t *testing.T) {
	c := New()
	decoded, ok := c.Decode([]byte{0x01, 'a', 0xFF})
	if !ok {
		t.Fatal("ascii decode must never fail")
	}
	if decoded.Fields[0].Value.String != ".a." {
		t.Fatalf("text = %q, want %q", decoded.Fields[0].Value.String, ".a.")
	}
}

func TestValidateNonPrintableWarning(t *testing.T) {
	c := New()
	fe := c.Validate([]byte{0x01})
	if fe == nil || fe.Code != "NON_PRINTABLE" || fe.Severity != "warning" {
		t.Fatalf("expected NON_PRINTABLE warning, got %+v", fe)
	}
}

func TestValidateAllowsTabLFCR(t *testing.T) {
	c := New()
	if fe := c.Validate([]byte("a\tb\nc\rd")); fe != nil {
		t.Fatalf("expected nil, got %+v", fe)
	}
}
