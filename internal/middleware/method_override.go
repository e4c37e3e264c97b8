package middleware

import (
	"net/http"
	"strings"
)

const methodOverrideField = "_method"

// MethodOverride lets plain HTML forms reach PUT and DELETE routes through a
// hidden _method field. gin matches routes before its own middleware runs, so
// this wraps the engine as an http.Handler.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && isForm(r) {
			switch m := strings.ToUpper(r.PostFormValue(methodOverrideField)); m {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data")
}
