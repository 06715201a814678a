package netaddr

import "testing"

func TestParseNetwork(t *testing.T) {
	a, err := ParseNetwork("example.com:24800", 0)
	if err != nil {
		t.Fatalf("ParseNetwork: %v", err)
	}
	if a.Host != "example.com" || a.Port != 24800 {
		t.Errorf("got %s:%d, want example.com:24800", a.Host, a.Port)
	}

	a, err = ParseNetwork("example.com", 24800)
	if err != nil {
		t.Fatalf("ParseNetwork bare host: %v", err)
	}
	if a.Host != "example.com" || a.Port != 24800 {
		t.Errorf("bare host: got %s:%d, want default port applied", a.Host, a.Port)
	}

	if _, err := ParseNetwork("host:notaport", 0); err == nil {
		t.Error("expected error for non-numeric port")
	}
}

func TestResolveLocalhost(t *testing.T) {
	a := &Network{Host: "localhost", Port: 24800}
	if a.Resolved() {
		t.Error("Resolved true before Resolve")
	}
	if err := a.Resolve(); err != nil {
		t.Fatalf("Resolve localhost: %v", err)
	}
	if !a.Resolved() {
		t.Error("Resolved false after Resolve")
	}
	if a.ResolvedAddr() == "" {
		t.Error("ResolvedAddr empty after Resolve")
	}
}

func TestResolveFailure(t *testing.T) {
	a := &Network{Host: "no-such-host.invalid", Port: 1}
	if err := a.Resolve(); err == nil {
		t.Error("expected resolution failure for .invalid host")
	}
}

func TestString(t *testing.T) {
	a := &Network{Host: "server", Port: 24800}
	if a.String() != "server:24800" {
		t.Errorf("String = %q", a.String())
	}
	if Raw("unix:/tmp/sock").String() != "unix:/tmp/sock" {
		t.Errorf("Raw String = %q", Raw("unix:/tmp/sock").String())
	}
}
