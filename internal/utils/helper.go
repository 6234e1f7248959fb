package utils

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// GenerateOrderNumber builds a human-readable, practically unique order token:
// a base36 millisecond timestamp plus a random hex suffix.
func GenerateOrderNumber() string {
	millis := time.Now().UTC().UnixMilli()
	timestamp := strings.ToUpper(strconv.FormatInt(millis, 36))

	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		// fallback: time-based entropy
		n, _ := rand.Int(rand.Reader, big.NewInt(1<<24))
		if n == nil {
			n = big.NewInt(time.Now().UnixNano() % (1 << 24))
		}
		return fmt.Sprintf("ORD-%s-%06X", timestamp, n.Int64())
	}

	return fmt.Sprintf("ORD-%s-%02X%02X%02X", timestamp, suffix[0], suffix[1], suffix[2])
}

func StrPtr(s string) *string {
	return &s
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func WriteJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
