package failsafe

import (
	"net/http"

	json "github.com/goccy/go-json"
)

// InventoryHandler returns an [http.Handler] that serves the JSON-encoded
// [Inventory] of reg with status 200.
func InventoryHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		inv := reg.Inventory()

		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusOK)

		//nolint:errcheck // best-effort JSON encoding to HTTP response
		_ = json.NewEncoder(writer).Encode(inv)
	})
}
