package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// PreferencesVersion is the current schema version of Preferences.
const PreferencesVersion = 1

// Tone selects the coaching voice.
type Tone string

const (
	ToneSupportive Tone = "supportive"
	ToneDirect     Tone = "direct"
	ToneScientific Tone = "scientific"
)

const (
	maxAllergies     = 20
	maxAllergyLength = 40
)

// Preferences is the user's coaching configuration. It is validated once
// at the boundary (onboarding) and read as-is afterwards.
type Preferences struct {
	Version            int      `json:"version"`
	Tone               Tone     `json:"tone,omitempty"`
	Vegetarian         bool     `json:"vegetarian"`
	Vegan              bool     `json:"vegan"`
	Allergies          []string `json:"allergies,omitempty"`
	NoCalorieEstimates bool     `json:"noCalorieEstimates"`
}

// DefaultPreferences returns the preferences assigned to new users.
func DefaultPreferences() Preferences {
	return Preferences{Version: PreferencesVersion, Tone: ToneSupportive}
}

// Normalize fills defaults, makes vegan imply vegetarian and tidies the
// allergy list (trimmed, lowercased, de-duplicated, order preserved).
func (p Preferences) Normalize() Preferences {
	p.Version = PreferencesVersion
	p.Tone = Tone(strings.ToLower(strings.TrimSpace(string(p.Tone))))
	if p.Tone == "" {
		p.Tone = ToneSupportive
	}
	if p.Vegan {
		p.Vegetarian = true
	}
	if len(p.Allergies) > 0 {
		seen := make(map[string]struct{}, len(p.Allergies))
		out := make([]string, 0, len(p.Allergies))
		for _, a := range p.Allergies {
			a = strings.ToLower(strings.TrimSpace(a))
			if a == "" {
				continue
			}
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
		p.Allergies = out
	}
	return p
}

// Validate checks a normalized Preferences value.
func (p Preferences) Validate() error {
	switch p.Tone {
	case ToneSupportive, ToneDirect, ToneScientific:
	default:
		return fmt.Errorf("tone must be one of supportive, direct, scientific (got %q)", p.Tone)
	}
	if len(p.Allergies) > maxAllergies {
		return fmt.Errorf("at most %d allergies allowed", maxAllergies)
	}
	for _, a := range p.Allergies {
		if utf8.RuneCountInString(a) > maxAllergyLength {
			return fmt.Errorf("allergy %q exceeds %d characters", a, maxAllergyLength)
		}
	}
	return nil
}

// SubscriptionStatus is the billing state mirrored from the payment provider.
type SubscriptionStatus string

const (
	StatusFree     SubscriptionStatus = "free"
	StatusTrial    SubscriptionStatus = "trial"
	StatusActive   SubscriptionStatus = "active"
	StatusCanceled SubscriptionStatus = "canceled"
)

// IsPro reports whether the status unlocks pro features (trial or active).
func (s SubscriptionStatus) IsPro() bool {
	return s == StatusTrial || s == StatusActive
}
