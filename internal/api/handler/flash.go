package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const flashCookieName = "flash"

// Flash categories
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the next rendered page
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// setFlash stores a message for the next page, keeping messages not yet shown
func setFlash(c *gin.Context, category, message string) {
	flashes := append(readFlashes(c), Flash{Category: category, Message: message})

	data, err := json.Marshal(flashes)
	if err != nil {
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName, base64.RawURLEncoding.EncodeToString(data), 0, "/", "", false, true)
}

// popFlashes returns pending messages and clears them
func popFlashes(c *gin.Context) []Flash {
	flashes := readFlashes(c)
	if len(flashes) > 0 {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(flashCookieName, "", -1, "/", "", false, true)
	}
	return flashes
}

func readFlashes(c *gin.Context) []Flash {
	value, err := c.Cookie(flashCookieName)
	if err != nil || value == "" {
		return nil
	}

	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}

	var flashes []Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}

// redirectWithFlash stores a message and redirects
func redirectWithFlash(c *gin.Context, location, category, message string) {
	setFlash(c, category, message)
	c.Redirect(http.StatusFound, location)
}
