// Package service provides the business logic layer for Stack Quest.
//
// The service package implements:
//   - Multi-session game management
//   - Level pack discovery and loading
//   - Tick resolution for held input, single or batched
//   - Queued reset and quit requests
//   - Per-session event history
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// PackManager loads level packs and names the default one.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Engines are not safe for concurrent mutation, so the
// service serialises every tick behind one lock; snapshots are read without
// it.
//
// Usage:
//
//	sessionMgr := session.NewManager(logger)
//	packMgr, _ := config.NewManager("packs")
//	gameService := service.NewGameService(sessionMgr, packMgr, logger)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Hold right for ten ticks
//	result, err := gameService.Move(ctx, info.ID, service.MoveRequest{Direction: "right", Ticks: 10})
package service
