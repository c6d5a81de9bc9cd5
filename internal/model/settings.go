// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines build settings containers.
//
// Why `any` values?
//
// A build setting is either a scalar string or an ordered list of strings,
// and the distinction is semantic: the settings synthesizer must append to a
// list in place but convert a scalar into a two-element list when merging an
// inferred flag. Values are therefore stored as `string` or `[]string` and
// never normalized on load.
package model

// Settings holds a base settings map plus per-configuration overrides.
type Settings struct {
	Base    map[string]any
	Configs map[string]map[string]any // keyed by configuration name
}

// NewSettings returns an empty, initialized Settings.
func NewSettings() *Settings {
	return &Settings{
		Base:    map[string]any{},
		Configs: map[string]map[string]any{},
	}
}

// ForConfig flattens the settings for one configuration name: base values
// first, then the matching per-config override map. The returned map is a
// fresh copy owned by the caller.
func (s *Settings) ForConfig(configName string) map[string]any {
	out := map[string]any{}
	if s == nil {
		return out
	}
	for k, v := range s.Base {
		out[k] = copySettingValue(v)
	}
	if override, ok := s.Configs[configName]; ok {
		for k, v := range override {
			out[k] = copySettingValue(v)
		}
	}
	return out
}

// copySettingValue deep-copies list values so callers can append without
// aliasing the immutable spec.
func copySettingValue(v any) any {
	if list, ok := v.([]string); ok {
		return append([]string(nil), list...)
	}
	return v
}
