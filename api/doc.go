// Package api provides the HTTP REST API for Stack Quest.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session, body {"pack_id": "classic"}
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Session info with its current snapshot
//   - DELETE /api/sessions/{id} - Delete a session
//
// Play:
//   - GET /api/sessions/{id}/state - Current snapshot
//   - POST /api/sessions/{id}/move - Resolve ticks of held input
//   - POST /api/sessions/{id}/tick - Resolve one tick with the held direction
//   - POST /api/sessions/{id}/reset - Reload the current level
//   - POST /api/sessions/{id}/quit - Stop the game
//   - POST /api/sessions/{id}/capacity - Change backpack capacity, body {"capacity": 4}
//   - GET /api/sessions/{id}/history - Event history (?page&limit&order)
//
// Packs:
//   - GET /api/packs - List level packs
//   - GET /api/packs/{id} - Pack manifest and rules
//
// Other:
//   - GET /api/health
//   - GET /ws?session={id} - WebSocket upgrade, see package websocket
//
// A move body names the direction one of three ways, checked in this order:
//
//	{"keys": ["w", "d"], "ticks": 10}
//	{"direction": "up-right", "ticks": 10}
//	{"dx": 0.5, "dy": -1}
//
// and may ask for a reset first with "reset": true. A move stops early when
// the player is blocked, dies, changes level or the game quits.
//
// Error Handling:
//
// Errors are returned as JSON with the HTTP status code repeated:
//
//	{
//	  "error": "session zz: session not found",
//	  "code": 404
//	}
package api
