// Package nats exposes the mixer over NATS so other hosts can read and
// change volume without the HTTP API.
//
// # Architecture
//
//   - Server: optional embedded NATS server running in the main process
//   - Bridge: answers command and readings requests with the local mixer and
//     republishes event bus traffic to NATS
//   - Client: request side used by the CLI --nats flag
//
// # Subject Hierarchy
//
//	alsavolume.command                   # command request/reply (client → server)
//	alsavolume.readings                  # readings request/reply (client → server)
//	alsavolume.events.volume_changed     # successful mutations (server → any)
//	alsavolume.events.command_failed     # failed commands (server → any)
//	alsavolume.events.sound_device       # card hotplug (server → any)
//	alsavolume.events.controls_reloaded  # priority list swaps (server → any)
//
// Requests and replies are JSON. A command request carries the same flat
// object the HTTP API accepts; the reply is the command result.
//
// # Debugging with nats CLI
//
// Monitor all mixer events:
//
//	nats sub "alsavolume.events.>"
//
// Read every card:
//
//	nats req alsavolume.readings ''
//
// Set the volume on card 0:
//
//	nats req alsavolume.command '{"command":"set_volume","card":0,"volume":40}'
package nats
