// Package websocket provides the real-time transport for Stack Quest.
//
// A Hub keeps the connected clients of every session and pushes each new
// snapshot to them. Clients attach with GET /ws?session={id} and receive the
// current snapshot first.
//
// Message Protocol:
//
// Outgoing messages are JSON objects:
//
//	{"session_id":"abc1","event":"snapshot","snapshot":{...}}
//	{"session_id":"abc1","event":"error","data":{"error":"..."}}
//
// Incoming messages drive play and are forwarded to the hub's InputHandler:
//
//	{"type":"hold","keys":["w","d"]}
//	{"type":"hold","direction":"left"}
//	{"type":"release"}
//	{"type":"reset"}
//	{"type":"quit"}
//
// Usage:
//
//	hub := websocket.NewHub(nil, logger)
//	driver := scheduler.NewDriver(ctx, gameService, hub, 100*time.Millisecond, logger)
//	hub.SetInputHandler(driver)
//	go hub.Run(ctx)
package websocket
