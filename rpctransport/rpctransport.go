// Package rpctransport is a TCP JSON-RPC 2.0 front end for the rename
// engine, addressed directly via sourcegraph/jsonrpc2's wire codec rather
// than through glsp's LSP handshake — a scriptable alternative transport
// for headless callers (CI, batch refactors) that don't want to speak
// full textDocument/didOpen bookkeeping first. Grounded on the manual
// read/dispatch/write loop a reference xpls server builds directly on
// jsonrpc2.VSCodeObjectCodec instead of jsonrpc2.Conn's higher-level
// dispatch.
package rpctransport

import (
	"bufio"
	"context"
	"encoding/json"
	"net"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/oaklang/rename-lsp/loc"
	"github.com/oaklang/rename-lsp/rename"
	"github.com/oaklang/rename-lsp/rlog"
)

// RenameParams is the request shape the "rename" and "prepareRename"
// methods accept: a cursor addressed by file and byte offset/length,
// plus the workspace folders to search and the replacement name
// ("rename" only; empty for "prepareRename").
type RenameParams struct {
	File             string   `json:"file"`
	Offset           int      `json:"offset"`
	Length           int      `json:"length"`
	CursorName       string   `json:"cursorName"`
	WorkspaceFolders []string `json:"workspaceFolders"`
	RootFolder       string   `json:"rootFolder"`
	NewName          string   `json:"newName"`
}

// Serve accepts connections on listener, handling one request loop per
// connection until it closes. Every request is answered against driver.
func Serve(ctx context.Context, listener net.Listener, driver *rename.Driver) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			return err
		}
		go serveConn(ctx, conn, driver)
	}
}

func serveConn(ctx context.Context, conn net.Conn, driver *rename.Driver) {
	defer conn.Close()
	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)
	codec := jsonrpc2.VSCodeObjectCodec{}

	for {
		req := &jsonrpc2.Request{}
		if err := codec.ReadObject(reader, req); err != nil {
			return
		}

		var params RenameParams
		if req.Params != nil {
			if err := json.Unmarshal(*req.Params, &params); err != nil {
				writeError(writer, codec, req.ID, "invalid params: "+err.Error())
				continue
			}
		}

		result, ok := dispatch(ctx, driver, req.Method, params)
		if !ok {
			writeError(writer, codec, req.ID, "unknown method: "+req.Method)
			continue
		}

		payload, err := json.Marshal(result)
		if err != nil {
			writeError(writer, codec, req.ID, err.Error())
			continue
		}
		raw := json.RawMessage(payload)
		if werr := codec.WriteObject(writer, &jsonrpc2.Response{ID: req.ID, Result: &raw}); werr != nil {
			rlog.Warnf("rpctransport: write failed: %v", werr)
			return
		}
		if err := writer.Flush(); err != nil {
			rlog.Warnf("rpctransport: flush failed: %v", err)
			return
		}
	}
}

func dispatch(ctx context.Context, driver *rename.Driver, method string, p RenameParams) (any, bool) {
	req := rename.Request{
		CursorFile:       p.File,
		CursorLocation:   loc.New(p.File, p.Offset, p.Length),
		CursorName:       p.CursorName,
		WorkspaceFolders: p.WorkspaceFolders,
		RootFolder:       p.RootFolder,
		NewName:          p.NewName,
	}

	switch method {
	case "prepareRename":
		req.CheckOnly = true
		result, rerr := driver.Rename(ctx, req)
		if rerr != nil {
			return errorPayload{Error: rerr.Error()}, true
		}
		return prepareResult{Range: result.Cursor.Location, Name: result.Cursor.Name}, true
	case "rename":
		result, rerr := driver.Rename(ctx, req)
		if rerr != nil {
			return errorPayload{Error: rerr.Error()}, true
		}
		return renameResult{
			Documents:         result.Edits.Documents,
			ChangeAnnotations: result.Edits.ChangeAnnotations,
		}, true
	default:
		return nil, false
	}
}

type errorPayload struct {
	Error string `json:"error"`
}

type prepareResult struct {
	Range loc.Location `json:"range"`
	Name  string       `json:"name"`
}

type renameResult struct {
	Documents         any `json:"documents"`
	ChangeAnnotations any `json:"changeAnnotations"`
}

func writeError(w *bufio.Writer, codec jsonrpc2.VSCodeObjectCodec, id jsonrpc2.ID, message string) {
	resp := &jsonrpc2.Response{
		ID:    id,
		Error: &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: message},
	}
	_ = codec.WriteObject(w, resp)
	_ = w.Flush()
}
