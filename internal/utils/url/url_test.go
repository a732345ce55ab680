// internal/utils/url/url_test.go
package urlutil

import "testing"

func TestValidate(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"https://example.com", false},
		{"http://example.com/path?q=1", false},
		{"ftp://example.com", true},
		{"example.com", true},
		{"https://", true},
		{"", true},
	}
	for _, tc := range cases {
		err := Validate(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("Validate(%q) = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
	}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		base, ref, want string
	}{
		{"https://example.com/products/", "hero.png", "https://example.com/products/hero.png"},
		{"https://example.com/products/", "/logo.svg", "https://example.com/logo.svg"},
		{"https://example.com/products/", "../up.css", "https://example.com/up.css"},
		{"https://example.com/products/", "https://cdn.example/x.js", "https://cdn.example/x.js"},
		{"https://example.com/products/", "//cdn.example/y.js", "https://cdn.example/y.js"},
	}
	for _, tc := range cases {
		if got := Resolve(tc.base, tc.ref); got != tc.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tc.base, tc.ref, got, tc.want)
		}
	}
}

func TestHost(t *testing.T) {
	if got := Host("https://example.com:8080/x"); got != "example.com:8080" {
		t.Errorf("Host = %q", got)
	}
	if got := Host("::bad::"); got != "" {
		t.Errorf("Host on unparseable input = %q, want empty", got)
	}
}
