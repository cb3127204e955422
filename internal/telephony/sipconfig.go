// Package telephony assembles per-agent softphone connection profiles.
package telephony

import (
	"errors"

	"cloudconnect/internal/config"
	"cloudconnect/internal/identity"
)

// ErrNotProvisioned means the user has no SIP extension assigned yet.
var ErrNotProvisioned = errors.New("telephony: user has no sip extension")

// SIPConfig is everything a softphone needs to register. It contains the
// user's SIP credential and must only ever be returned to that user.
type SIPConfig struct {
	Server    string `json:"server"`
	Domain    string `json:"domain"`
	Extension string `json:"extension"`
	Password  string `json:"password"`
}

// Provider combines the deployment-wide SIP settings with per-user
// credentials.
type Provider struct {
	cfg config.SIPConfig
}

func NewProvider(cfg config.SIPConfig) *Provider {
	return &Provider{cfg: cfg}
}

// ConfigFor builds the softphone profile for u.
func (p *Provider) ConfigFor(u identity.User) (SIPConfig, error) {
	if u.SIPExtension == "" {
		return SIPConfig{}, ErrNotProvisioned
	}
	return SIPConfig{
		Server:    p.cfg.ServerHost,
		Domain:    p.cfg.Domain,
		Extension: u.SIPExtension,
		Password:  u.SIPPassword,
	}, nil
}
