// Package mcp exposes Stack Quest to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call is translated into a request
// against the REST API served by package api, and the JSON response is
// rendered as plain text an agent can read. It holds no game state itself.
//
// MCP Tools:
//
//   - create_session, list_sessions, get_session: session management
//   - game_state: grid with the player marked as @, backpack and status
//   - move: hold a direction or key set for a number of ticks
//   - reset_game, quit_game: queued level reset and quit
//   - event_history: paginated pickups, doors, deaths and level changes
//   - list_packs: available level packs
//   - game_instructions: the rules of the game
//   - describe_cell: what a single cell does to movement and to the player
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// Stdio mode
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode
//	router.PathPrefix("/mcp").Handler(server.NewStreamableHTTPServer(client.GetMCPServer()))
package mcp
