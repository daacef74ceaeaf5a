package httpapi

import (
	"io"
	"net/http"
	"strconv"
)

// parseInt parses a decimal query parameter; empty means zero.
func parseInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

// readAll drains a request body.
func readAll(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}
