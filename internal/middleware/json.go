package middleware

import (
	"encoding/json"
	"net/http"
)

func jsonEncode(w http.ResponseWriter, value any) error {
	enc := json.NewEncoder(w)
	return enc.Encode(value)
}
