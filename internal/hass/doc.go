// Package hass builds MQTT topics and discovery payloads following the
// Home Assistant MQTT auto-discovery convention.
//
// Every monitored device becomes one HA sensor entity:
//
//	<node>/<device>/state                        raw state string
//	<node>/<device>/attributes                   JSON attributes object
//	<prefix>/sensor/<node>/<device>/config       discovery payload (retained)
//
// The prefix defaults to "homeassistant". All functions are pure.
package hass
