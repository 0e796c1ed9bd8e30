package websocket_test

import (
	"github.com/rcviewer/rclog/internal/storage"
	"github.com/rcviewer/rclog/internal/storage/websocket"
)

// Compile-time interface check.
var _ storage.Backend = (*websocket.Backend)(nil)
