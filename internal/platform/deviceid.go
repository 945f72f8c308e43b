// Package platform reads facts about the host the service runs on.
package platform

import (
	"crypto/sha256"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

// UnknownDeviceID is reported when the host has no machine fingerprint.
const UnknownDeviceID = "unknown"

var machineIDPaths = []string{
	"/etc/machine-id",
	"/var/lib/dbus/machine-id",
}

// VendorDeviceID returns an identifier for this host that is stable across
// launches and scoped to vendor: two vendors on the same host see different IDs.
func VendorDeviceID(vendor string) string {
	return DeviceIDFrom(vendor, machineIDPaths...)
}

// DeviceIDFrom derives the vendor device ID from the first readable,
// non-empty fingerprint file in paths.
func DeviceIDFrom(vendor string, paths ...string) string {
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		fp := strings.TrimSpace(string(raw))
		if fp == "" {
			continue
		}
		id, err := DeriveDeviceID(fp, vendor)
		if err != nil {
			return UnknownDeviceID
		}
		return id
	}
	return UnknownDeviceID
}

// DeriveDeviceID expands fingerprint with HKDF-SHA256, salted by vendor, into
// an upper-case version 4 UUID string.
func DeriveDeviceID(fingerprint, vendor string) (string, error) {
	if fingerprint == "" {
		return "", errors.New("empty machine fingerprint")
	}

	h := hkdf.New(sha256.New, []byte(fingerprint), []byte(vendor), []byte("vendor-device-id"))
	out := make([]byte, 16)
	if _, err := io.ReadFull(h, out); err != nil {
		return "", err
	}
	out[6] = (out[6] & 0x0f) | 0x40
	out[8] = (out[8] & 0x3f) | 0x80

	id, err := uuid.FromBytes(out)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(id.String()), nil
}
