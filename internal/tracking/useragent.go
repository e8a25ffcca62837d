package tracking

import (
	"strings"

	"github.com/mssola/user_agent"
)

// Classification is the family-level breakdown of a raw User-Agent
// header. No version granularity is exposed.
type Classification struct {
	DeviceType string
	OS         string
	Browser    string
}

// Unknown is the classification for an empty or unparseable header.
const unknownFamily = "Unknown"

// Classify parses a raw User-Agent header into device/OS/browser families.
// An empty header yields the Unknown classification rather than an error.
func Classify(uaString string) Classification {
	if strings.TrimSpace(uaString) == "" {
		return Classification{DeviceType: unknownFamily, OS: unknownFamily, Browser: unknownFamily}
	}

	ua := user_agent.New(uaString)

	c := Classification{
		DeviceType: detectDeviceType(uaString, ua.Mobile()),
	}

	c.OS = ua.OSInfo().Name
	if c.OS == "" {
		c.OS = unknownFamily
	}

	browser, _ := ua.Browser()
	if browser == "" {
		browser = unknownFamily
	}
	c.Browser = browser

	return c
}

// detectDeviceType buckets a user agent into mobile/tablet/desktop.
// Tablets advertise themselves inconsistently, so the substring check
// runs before the library's mobile flag.
func detectDeviceType(uaString string, mobile bool) string {
	ua := strings.ToLower(uaString)
	if strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad") {
		return "tablet"
	}
	if mobile || strings.Contains(ua, "mobile") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone") {
		return "mobile"
	}
	return "desktop"
}
