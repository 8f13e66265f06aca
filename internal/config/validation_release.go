//go:build release

package config

const validationDefault = false
