package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError replies with the API's error body so rejections made before a
// handler runs look the same to clients as handler errors.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]map[string]string{
		"error": {"code": code, "message": message},
	})
}
