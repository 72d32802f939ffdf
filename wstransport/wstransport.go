// Package wstransport exposes the rename engine over a WebSocket
// connection using gorilla/websocket directly: one JSON request per
// rename, with every progress.Step tick streamed back as its own frame
// before the final result frame. This is the transport that can actually
// show a caller the five-step pipeline (§4.7, §5) run live, which a
// request/response-only transport cannot.
package wstransport

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/oaklang/rename-lsp/loc"
	"github.com/oaklang/rename-lsp/progress"
	"github.com/oaklang/rename-lsp/rename"
	"github.com/oaklang/rename-lsp/rlog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The engine is consumed by local tooling, not third-party browser
	// pages, so any origin presenting a valid request is accepted.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Request is one rename call's JSON shape over the socket.
type Request struct {
	File             string   `json:"file"`
	Offset           int      `json:"offset"`
	Length           int      `json:"length"`
	CursorName       string   `json:"cursorName"`
	WorkspaceFolders []string `json:"workspaceFolders"`
	RootFolder       string   `json:"rootFolder"`
	NewName          string   `json:"newName"`
}

// progressFrame is sent once per completed pipeline step.
type progressFrame struct {
	Type string `json:"type"` // "progress"
	Step string `json:"step"`
}

// resultFrame is sent once, after the rename completes or fails.
type resultFrame struct {
	Type              string `json:"type"` // "result"
	Error             string `json:"error,omitempty"`
	Documents         any    `json:"documents,omitempty"`
	ChangeAnnotations any    `json:"changeAnnotations,omitempty"`
}

// Handler returns an http.HandlerFunc that upgrades each request to a
// WebSocket connection and serves rename requests read from it, one at a
// time, until the connection closes.
func Handler(driver *rename.Driver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			rlog.Warnf("wstransport: upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		for {
			var req Request
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			serveOne(r.Context(), conn, driver, req)
		}
	}
}

func serveOne(ctx context.Context, conn *websocket.Conn, driver *rename.Driver, req Request) {
	cancel := progress.NewCancelToken()
	reporter := func(step progress.Step, _ int) {
		_ = conn.WriteJSON(progressFrame{Type: "progress", Step: step.String()})
	}

	result, rerr := driver.Rename(ctx, rename.Request{
		CursorFile:       req.File,
		CursorLocation:   loc.New(req.File, req.Offset, req.Length),
		CursorName:       req.CursorName,
		WorkspaceFolders: req.WorkspaceFolders,
		RootFolder:       req.RootFolder,
		NewName:          req.NewName,
		Progress:         reporter,
		Cancel:           cancel,
	})
	if rerr != nil {
		_ = conn.WriteJSON(resultFrame{Type: "result", Error: rerr.Error()})
		return
	}
	_ = conn.WriteJSON(resultFrame{
		Type:              "result",
		Documents:         result.Edits.Documents,
		ChangeAnnotations: result.Edits.ChangeAnnotations,
	})
}
