package handler

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"text/template"

	"github.com/gin-gonic/gin"
)

// DefaultProxyPaths are the storefront proxy routes tried after the direct endpoint
var DefaultProxyPaths = []string{"/apps/igfeed/track", "/apps/instagram-feed/track"}

const beaconCacheControl = "public, max-age=300"

//go:embed beacon.js.tmpl
var beaconSource string

var beaconTemplate = template.Must(template.New("beacon").Parse(beaconSource))

// BeaconHandler serves the storefront tracking script
type BeaconHandler struct {
	script []byte
}

// NewBeaconHandler renders the script once. The direct tracking URL is tried
// first, then each proxy path in order.
func NewBeaconHandler(trackingURL string, proxyPaths []string) (*BeaconHandler, error) {
	endpoints := make([]string, 0, len(proxyPaths)+1)
	if trackingURL != "" {
		endpoints = append(endpoints, trackingURL)
	}
	endpoints = append(endpoints, proxyPaths...)
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("beacon: at least one tracking endpoint is required")
	}

	encoded, err := json.Marshal(endpoints)
	if err != nil {
		return nil, fmt.Errorf("beacon: encode endpoints: %w", err)
	}

	var buf bytes.Buffer
	if err := beaconTemplate.Execute(&buf, struct{ Endpoints string }{string(encoded)}); err != nil {
		return nil, fmt.Errorf("beacon: render: %w", err)
	}
	return &BeaconHandler{script: buf.Bytes()}, nil
}

// Serve returns the script.
// GET /beacon.js
func (h *BeaconHandler) Serve(c *gin.Context) {
	c.Header("Cache-Control", beaconCacheControl)
	c.Header("Access-Control-Allow-Origin", "*")
	c.Data(http.StatusOK, "text/javascript; charset=utf-8", h.script)
}
