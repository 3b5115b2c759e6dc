package utils

import (
	"net"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// ClientIP returns the client address of r without its port. It expects
// RemoteAddr to have been rewritten from forwarding headers upstream.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

// RouteParam retrieves a path parameter from the request context and removes
// a trailing ".json" or ".csv" extension.
func RouteParam(r *http.Request, paramName string) string {
	params := httprouter.ParamsFromContext(r.Context())
	raw := params.ByName(paramName)
	for _, ext := range []string{".json", ".csv"} {
		if strings.HasSuffix(raw, ext) {
			return strings.TrimSuffix(raw, ext)
		}
	}
	return raw
}
