package controllers

import (
	"net/http"
	"net/url"
	"strings"
)

const whatsappCookie = "user_whatsapp"

// cookieWhatsApp returns the number the storefront stored after price
// liberation, or "".
func cookieWhatsApp(r *http.Request) string {
	c, err := r.Cookie(whatsappCookie)
	if err != nil {
		return ""
	}
	value, err := url.QueryUnescape(c.Value)
	if err != nil {
		value = c.Value
	}
	return strings.TrimSpace(value)
}
