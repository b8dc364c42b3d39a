package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

const (
	// CartCookie carries the cart id between requests
	CartCookie = "hobbyshop_cart"

	// CartHeader may be sent instead of the cookie by non-browser clients
	CartHeader = "X-Cart-ID"

	maxBodyBytes = 1 << 20
)

// decodeJSON reads a single JSON object from the request body
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// cartID returns the cart id sent by the client, or "" if there is none
func cartID(r *http.Request) string {
	if id := r.Header.Get(CartHeader); id != "" {
		return id
	}
	if c, err := r.Cookie(CartCookie); err == nil {
		return c.Value
	}
	return ""
}

// ensureCartID returns the client's cart id, issuing a new one when the
// client has none yet
func ensureCartID(w http.ResponseWriter, r *http.Request) string {
	if id := cartID(r); id != "" {
		return id
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     CartCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   365 * 24 * 60 * 60,
	})
	w.Header().Set(CartHeader, id)
	return id
}
