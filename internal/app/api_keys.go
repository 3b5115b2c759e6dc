package app

import (
	"crypto/subtle"
	"net/http"
)

func (app *Application) RequestHasInvalidAdminKey(r *http.Request) bool {
	key := r.URL.Query().Get("key")
	return app.IsInvalidAdminKey(key)
}

// IsInvalidAdminKey reports whether key is not one of the configured admin
// keys. With no keys configured every key is invalid.
func (app *Application) IsInvalidAdminKey(key string) bool {
	if key == "" {
		return true
	}

	for _, validKey := range app.Config.HTTP.AdminKeys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(validKey)) == 1 {
			return false
		}
	}

	return true
}
