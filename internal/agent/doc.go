// Package agent drives diskmon's announce-then-poll loop.
//
// Architecture:
//
//	┌────────────────────────────────────────────────┐
//	│                 Agent (agent.go)                │
//	│  1. Announce: retained discovery per device     │
//	│  2. RunCycle: for each device, in order         │
//	│       poll → publish state → publish attributes │
//	│  3. Sleep interval, repeat until ctx is done    │
//	└──────────┬───────────────────────┬─────────────┘
//	           ▼                       ▼
//	    monitor.Registry          Publisher (mqtt.Client)
//
// # Failure Isolation
//
// A failed announcement aborts Run before any polling: Home Assistant would
// ignore state for entities it was never told about. After that, a failure
// for one device (poll or publish) is logged with the device id and the
// cycle moves on to the next device.
//
// # Thread Safety
//
// Run is meant to be called once. Stats and HandleStatus may be called
// concurrently with it. HandleStatus returns immediately and announces in
// the background; WaitRepublish waits for those announcements.
//
// # Usage
//
//	a, err := agent.New(mqttClient, registry, agent.Options{
//	    Topics:   hass.Topics{NodeID: "nas01"},
//	    Devices:  specs,
//	    Interval: time.Minute,
//	    Logger:   log,
//	})
//	if err != nil {
//	    return err
//	}
//	return a.Run(ctx)
package agent
