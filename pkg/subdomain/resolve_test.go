package subdomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		host   string
		slug   string
		wantOK bool
	}{
		{host: "clinica-a.example.com", slug: "clinica-a", wantOK: true},
		{host: "Clinica-A.Example.COM:8443", slug: "clinica-a", wantOK: true},
		{host: "clinica.localhost", slug: "clinica", wantOK: true},
		{host: "clinica.localhost:3000", slug: "clinica", wantOK: true},
		{host: "a.b.example.co", slug: "a", wantOK: true},
		{host: "admin.example.com"},
		{host: "www.example.com"},
		{host: "admin.localhost"},
		{host: "admin.localhost:5173"},
		{host: "localhost"},
		{host: "localhost:3000"},
		{host: "example.com"},
		{host: "127.0.0.1"},
		{host: "127.0.0.1:8080"},
		{host: "192.168.1.20:3000"},
		{host: "[::1]:8080"},
		{host: "::1"},
		{host: ""},
		{host: ".example.com"},
		{host: "clinic..com"},
	}
	for _, tc := range cases {
		t.Run(tc.host, func(t *testing.T) {
			slug, ok := Resolve(tc.host)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.slug, slug)
		})
	}
}

func TestResolve_AnySubdomainExceptReserved(t *testing.T) {
	for _, sub := range []string{"a", "clinic", "x1", "api", "app", "mail"} {
		for _, domain := range []string{"example.com", "saas.co.uk"} {
			slug, ok := Resolve(sub + "." + domain)
			assert.True(t, ok, sub+"."+domain)
			assert.Equal(t, sub, slug)
		}
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "example.com", Normalize(" Example.COM:80 "))
	assert.Equal(t, "::1", Normalize("[::1]:443"))
	assert.Equal(t, "", Normalize("   "))
}
