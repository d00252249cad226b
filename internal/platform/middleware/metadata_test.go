package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"paygate/pkg/requestcontext"
)

func TestMetadata_ClientIPResolution(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		platform   string
		wantIP     string
	}{
		{
			name:       "x-forwarded-for wins",
			remoteAddr: "10.0.0.1:443",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.7, 10.0.0.1",
				"X-Real-IP":       "198.51.100.1",
			},
			wantIP: "203.0.113.7",
		},
		{
			name:       "single forwarded entry is trimmed",
			remoteAddr: "10.0.0.1:443",
			headers:    map[string]string{"X-Forwarded-For": "  203.0.113.7  "},
			wantIP:     "203.0.113.7",
		},
		{
			name:       "platform header is second",
			remoteAddr: "10.0.0.1:443",
			platform:   "X-Client-Connection-IP",
			headers: map[string]string{
				"X-Client-Connection-IP": "203.0.113.9",
				"X-Real-IP":              "198.51.100.1",
			},
			wantIP: "203.0.113.9",
		},
		{
			name:       "x-real-ip is third",
			remoteAddr: "10.0.0.1:443",
			headers:    map[string]string{"X-Real-IP": "198.51.100.1"},
			wantIP:     "198.51.100.1",
		},
		{
			name:       "connection address is the fallback",
			remoteAddr: "203.0.113.50:51324",
			wantIP:     "203.0.113.50",
		},
		{
			name:       "oversized forwarded header is ignored",
			remoteAddr: "203.0.113.50:51324",
			headers:    map[string]string{"X-Forwarded-For": strings.Repeat("1", MaxForwardedHeaderLength+1)},
			wantIP:     "203.0.113.50",
		},
		{
			name:   "no usable source yields unknown",
			wantIP: UnknownIP,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotIP string
			next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				gotIP = requestcontext.ClientIP(r.Context())
			})

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			cfg := &MetadataConfig{ForwardedIPHeader: tc.platform}
			Metadata(cfg)(next).ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tc.wantIP, gotIP)
		})
	}
}

func TestMetadata_UserAgent(t *testing.T) {
	var gotUA string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotUA = requestcontext.UserAgent(r.Context())
	})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36")

	Metadata(nil)(next).ServeHTTP(httptest.NewRecorder(), req)
	assert.Contains(t, gotUA, "Chrome/126")
}

func TestBrowserFamily(t *testing.T) {
	t.Run("parses browser name and version", func(t *testing.T) {
		family := BrowserFamily("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36")
		assert.True(t, strings.HasPrefix(family, "Chrome/"), "got %q", family)
	})

	t.Run("bots are flagged", func(t *testing.T) {
		assert.Equal(t, "bot", BrowserFamily("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"))
	})

	t.Run("empty agent yields empty family", func(t *testing.T) {
		assert.Equal(t, "", BrowserFamily(""))
	})
}
