// Package models defines data structures used across the application.
// File: models/enums.go
package models

import (
	"encoding/json"
	"strings"
)

// ----------------------- colours -----------------------

// ColorID identifies a team colour or a board card colour.
type ColorID int

const (
	Red      ColorID = 1
	Blue     ColorID = 2
	Neutral  ColorID = 3
	Assassin ColorID = 4
)

var colorClasses = map[ColorID]string{
	Red:      "red",
	Blue:     "blue",
	Neutral:  "neutral",
	Assassin: "assassin",
}

// ParseColorID validates a raw colour value from the wire.
func ParseColorID(v int) (ColorID, error) {
	c := ColorID(v)
	if _, ok := colorClasses[c]; !ok {
		return 0, &UnknownEnumValueError{Enum: "ColorID", Value: v}
	}
	return c, nil
}

// ColorClass maps a raw colour value to its class name ("red", "blue", ...).
func ColorClass(v int) (string, error) {
	c, err := ParseColorID(v)
	if err != nil {
		return "", err
	}
	return colorClasses[c], nil
}

// ParseColorName is the inverse of ColorClass, case-insensitive.
func ParseColorName(name string) (ColorID, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, class := range colorClasses {
		if class == name {
			return c, nil
		}
	}
	return 0, &ValidationError{Field: "color", Reason: "unknown colour " + name}
}

// IsTeam reports whether players can join under this colour.
func (c ColorID) IsTeam() bool {
	return c == Red || c == Blue
}

func (c ColorID) String() string {
	if class, ok := colorClasses[c]; ok {
		return class
	}
	return "ColorID(" + itoa(int(c)) + ")"
}

// UnmarshalJSON rejects values outside the known set instead of coercing them.
func (c *ColorID) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseColorID(v)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ----------------------- roles -----------------------

// RoleID identifies a player's function within a team.
type RoleID int

const (
	Agent     RoleID = 1
	Spymaster RoleID = 2
)

var roleNames = map[RoleID]string{
	Agent:     "agent",
	Spymaster: "spymaster",
}

// ParseRoleID validates a raw role value from the wire.
func ParseRoleID(v int) (RoleID, error) {
	r := RoleID(v)
	if _, ok := roleNames[r]; !ok {
		return 0, &UnknownEnumValueError{Enum: "RoleID", Value: v}
	}
	return r, nil
}

// ParseRoleName accepts "agent" or "spymaster", case-insensitive.
func ParseRoleName(name string) (RoleID, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for r, n := range roleNames {
		if n == name {
			return r, nil
		}
	}
	return 0, &ValidationError{Field: "role", Reason: "unknown role " + name}
}

func (r RoleID) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "RoleID(" + itoa(int(r)) + ")"
}

// UnmarshalJSON rejects values outside the known set instead of coercing them.
func (r *RoleID) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseRoleID(v)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
