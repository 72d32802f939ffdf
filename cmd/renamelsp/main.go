// Command renamelsp exposes the rename engine over three transports: the
// primary LSP textDocument/rename + prepareRename surface (stdio or TCP,
// via glsp/server, mirroring the teacher's -tcp flag), an optional
// JSON-RPC-over-TCP debug transport for headless scripted callers, and
// an optional WebSocket transport that streams live pipeline progress.
// It wires scanfrontend, a minimal identifier-scanning stand-in for the
// real oracle.Parser/oracle.TypeChecker a concrete language deployment
// supplies instead (see scanfrontend's doc comment and DESIGN.md).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/oaklang/rename-lsp/legality"
	"github.com/oaklang/rename-lsp/loc"
	"github.com/oaklang/rename-lsp/model"
	"github.com/oaklang/rename-lsp/oracle"
	"github.com/oaklang/rename-lsp/progress"
	"github.com/oaklang/rename-lsp/rename"
	"github.com/oaklang/rename-lsp/rpctransport"
	"github.com/oaklang/rename-lsp/scanfrontend"
	"github.com/oaklang/rename-lsp/wire"
	"github.com/oaklang/rename-lsp/wstransport"
)

const version = "0.1.0"

var (
	tcpMode      bool
	tcpPort      int
	logLevel     string
	logFile      string
	debugRPCPort int
	wsPort       int

	workspaceFolders []string
)

func init() {
	flag.BoolVar(&tcpMode, "tcp", false, "run the LSP server over TCP instead of stdio")
	flag.IntVar(&tcpPort, "port", 8765, "TCP port to listen on (used with -tcp)")
	flag.StringVar(&logLevel, "log-level", "error", "log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "log file path (default: stderr)")
	flag.IntVar(&debugRPCPort, "debug-rpc-port", 0, "if nonzero, also serve the JSON-RPC debug transport on this TCP port")
	flag.IntVar(&wsPort, "ws-port", 0, "if nonzero, also serve the WebSocket transport on this HTTP port")
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr, "renamelsp version %s\n\n", version)
	fmt.Fprintf(os.Stderr, "Usage: renamelsp [options]\n\n")
	fmt.Fprintf(os.Stderr, "Rename-refactoring engine, served over LSP.\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()

	if flag.NArg() > 0 && flag.Arg(0) == "version" {
		fmt.Printf("renamelsp version %s\n", version)
		os.Exit(0)
	}

	verbosity := map[string]int{"error": 0, "warn": 1, "info": 2, "debug": 3}[logLevel]
	var logPath *string
	if logFile != "" {
		logPath = &logFile
	}
	commonlog.Configure(verbosity, logPath)

	setupPackageLogging()

	fs := oracle.NewLocalSourceFS()
	driver := rename.New(
		scanfrontend.Checker{FS: fs},
		scanfrontend.Parser{FS: fs},
		fs,
		scanfrontend.PathConfig,
	)
	driver.Validator = legality.DefaultValidator{}
	driver.Reserved = scanfrontend.Reserved

	ctx := context.Background()

	if debugRPCPort != 0 {
		go serveDebugRPC(ctx, driver)
	}
	if wsPort != 0 {
		go serveWebSocket(driver)
	}

	handler := protocol.Handler{
		Initialize:                initialize,
		Initialized:                initialized,
		Shutdown:                  shutdown,
		SetTrace:                  func(context *glsp.Context, params *protocol.SetTraceParams) error { return nil },
		TextDocumentRename:        renameHandler(ctx, driver, fs),
		TextDocumentPrepareRename: prepareRenameHandler(ctx, driver),
	}

	glspServer := glspserver.NewServer(&handler, "renamelsp", false)

	if tcpMode {
		fmt.Fprintf(os.Stderr, "renamelsp: TCP on port %d\n", tcpPort)
		if err := glspServer.RunTCP(fmt.Sprintf("127.0.0.1:%d", tcpPort)); err != nil {
			log.Fatalf("TCP server error: %v", err)
		}
	} else {
		fmt.Fprintf(os.Stderr, "renamelsp: stdio\n")
		if err := glspServer.RunStdio(); err != nil {
			log.Fatalf("stdio server error: %v", err)
		}
	}
}

// setupPackageLogging matches the teacher's own plain-log setup for
// everything below the transport layer (rlog wraps the same standard
// log package the teacher's handlers call directly).
func setupPackageLogging() {
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		log.SetOutput(f)
	} else {
		log.SetOutput(os.Stderr)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

func initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	for _, f := range params.WorkspaceFolders {
		if p, err := wire.URIToPath(f.URI); err == nil {
			workspaceFolders = append(workspaceFolders, p)
		}
	}
	if len(workspaceFolders) == 0 && params.RootURI != nil {
		if p, err := wire.URIToPath(string(*params.RootURI)); err == nil {
			workspaceFolders = append(workspaceFolders, p)
		}
	}

	trueVal := true
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: &trueVal,
			Change:    &syncKind,
		},
		RenameProvider: &protocol.RenameOptions{
			PrepareProvider: &trueVal,
		},
	}
	serverVersion := version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    "renamelsp",
			Version: &serverVersion,
		},
	}, nil
}

func initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func shutdown(context *glsp.Context) error {
	return nil
}

func renameHandler(ctx context.Context, driver *rename.Driver, fs oracle.SourceFS) protocol.TextDocumentRenameFunc {
	return func(context *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
		file, err := wire.URIToPath(string(params.TextDocument.URI))
		if err != nil {
			return nil, err
		}
		cursorLoc, cursorName, err := resolveCursor(file, params.Position)
		if err != nil {
			return nil, err
		}

		result, rerr := driver.Rename(ctx, rename.Request{
			CursorFile:       file,
			CursorLocation:   cursorLoc,
			CursorName:       cursorName,
			WorkspaceFolders: workspaceFolders,
			RootFolder:       rootFolder(),
			NewName:          params.NewName,
			Progress:         progress.Noop,
			Cancel:           progress.NewCancelToken(),
		})
		if rerr != nil {
			return nil, wire.ToRenameError(rerr)
		}
		return wire.ToWorkspaceEdit(result.Edits, fs)
	}
}

func prepareRenameHandler(ctx context.Context, driver *rename.Driver) protocol.TextDocumentPrepareRenameFunc {
	return func(context *glsp.Context, params *protocol.PrepareRenameParams) (any, error) {
		file, err := wire.URIToPath(string(params.TextDocument.URI))
		if err != nil {
			return nil, err
		}
		cursorLoc, cursorName, err := resolveCursor(file, params.Position)
		if err != nil {
			return nil, err
		}

		result, rerr := driver.Rename(ctx, rename.Request{
			CursorFile:       file,
			CursorLocation:   cursorLoc,
			CursorName:       cursorName,
			WorkspaceFolders: workspaceFolders,
			RootFolder:       rootFolder(),
			CheckOnly:        true,
			Progress:         progress.Noop,
			Cancel:           progress.NewCancelToken(),
		})
		if rerr != nil {
			return nil, wire.ToRenameError(rerr)
		}
		if result.Cursor.Kind == model.KindUnknown {
			return nil, nil
		}
		contents, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		r, err := wire.ToRange(string(contents), result.Cursor.Location)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

// resolveCursor maps an LSP (0-based, UTF-16) position into the byte
// Location and text of the run of ASCII letters, digits and underscores
// around it. Unlike scanfrontend's tokenizer, it does not treat
// non-ASCII letters as identifier characters and it keeps leading digits.
func resolveCursor(file string, position protocol.Position) (loc.Location, string, error) {
	contents, err := os.ReadFile(file)
	if err != nil {
		return loc.Location{}, "", err
	}
	mapper := loc.NewColumnMapper(string(contents))
	offset, err := mapper.Offset(loc.LineCol{
		Line:   int(position.Line) + 1,
		Column: int(position.Character) + 1,
	})
	if err != nil {
		return loc.Location{}, "", err
	}
	start, end := offset, offset
	for start > 0 && isIdentByte(contents[start-1]) {
		start--
	}
	for end < len(contents) && isIdentByte(contents[end]) {
		end++
	}
	if start == end {
		return loc.Location{}, "", fmt.Errorf("no identifier at the given position")
	}
	return loc.New(file, start, end-start), string(contents[start:end]), nil
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func rootFolder() string {
	if len(workspaceFolders) > 0 {
		return workspaceFolders[0]
	}
	wd, _ := os.Getwd()
	return wd
}

func serveDebugRPC(ctx context.Context, driver *rename.Driver) {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", debugRPCPort))
	if err != nil {
		log.Printf("debug-rpc: listen failed: %v", err)
		return
	}
	log.Printf("debug-rpc: listening on %s", listener.Addr())
	if err := rpctransport.Serve(ctx, listener, driver); err != nil {
		log.Printf("debug-rpc: serve error: %v", err)
	}
}

func serveWebSocket(driver *rename.Driver) {
	mux := http.NewServeMux()
	mux.Handle("/rename", wstransport.Handler(driver))
	addr := fmt.Sprintf("127.0.0.1:%d", wsPort)
	log.Printf("ws: listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("ws: serve error: %v", err)
	}
}
