// Package lsp serves conversion diagnostics over the Language Server
// Protocol. Diagnostics are published whenever a Java document is opened,
// changed or saved, and the ibpc.convert command returns the pseudocode of
// an open document.
package lsp

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/dhamidi/ibpc/convert"
	"github.com/dhamidi/ibpc/diag"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "ibpc"

// ConvertCommand is the workspace/executeCommand name. Its single argument
// is the URI of an open document.
const ConvertCommand = "ibpc.convert"

var log = commonlog.GetLogger("ibpc.lsp")

type LSPServer struct {
	documents *Documents
	options   convert.Options
	handler   protocol.Handler
	server    *server.Server
	version   string
}

func NewLSPServer(version string, options convert.Options) *LSPServer {
	ls := &LSPServer{
		documents: NewDocuments(),
		options:   options,
		version:   version,
	}

	ls.handler = protocol.Handler{
		Initialize:              ls.initialize,
		Initialized:             ls.initialized,
		Shutdown:                ls.shutdown,
		SetTrace:                ls.setTrace,
		TextDocumentDidOpen:     ls.textDocumentDidOpen,
		TextDocumentDidChange:   ls.textDocumentDidChange,
		TextDocumentDidClose:    ls.textDocumentDidClose,
		TextDocumentDidSave:     ls.textDocumentDidSave,
		WorkspaceExecuteCommand: ls.workspaceExecuteCommand,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{ConvertCommand},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("client initialized")
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.documents.Update(params.TextDocument.URI, params.TextDocument.Text)
	ls.publish(ctx, params.TextDocument.URI)
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		ls.documents.Update(params.TextDocument.URI, textChange.Text)
		ls.publish(ctx, params.TextDocument.URI)
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.documents.Remove(params.TextDocument.URI)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		ls.documents.Update(params.TextDocument.URI, *params.Text)
	}
	ls.publish(ctx, params.TextDocument.URI)
	return nil
}

func (ls *LSPServer) workspaceExecuteCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	if params.Command != ConvertCommand {
		return nil, fmt.Errorf("unknown command %q", params.Command)
	}
	if len(params.Arguments) != 1 {
		return nil, fmt.Errorf("%s expects a document URI", ConvertCommand)
	}
	uri, ok := params.Arguments[0].(string)
	if !ok {
		return nil, fmt.Errorf("%s expects a document URI, got %T", ConvertCommand, params.Arguments[0])
	}
	text, ok := ls.documents.Get(uri)
	if !ok {
		return nil, fmt.Errorf("document %s is not open", uri)
	}
	return convert.Convert(text, ls.options), nil
}

// publish converts the document and sends its diagnostics to the client.
func (ls *LSPServer) publish(ctx *glsp.Context, uri protocol.DocumentUri) {
	text, ok := ls.documents.Get(uri)
	if !ok {
		return
	}
	result := convert.Convert(text, ls.options)
	log.Debugf("%s: %d errors, %d warnings", displayPath(uri), len(result.Errors), len(result.Warnings))

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toProtocolDiagnostics(text, result.Diagnostics()),
	})
}

// toProtocolDiagnostics converts diagnostics of text. Diagnostic columns
// count bytes; LSP characters count UTF-16 code units.
func toProtocolDiagnostics(text string, diags []diag.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	source := lsName
	for _, d := range diags {
		severity := toProtocolSeverity(d.Severity)
		line := max(d.Line-1, 0)
		start, width := utf16Column(lineAt(text, line), max(d.Column-1, 0))
		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(start)},
				End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(start + width)},
			},
			Severity: &severity,
			Source:   &source,
			Message:  d.Kind.String() + ": " + d.Message,
		})
	}
	return out
}

// lineAt returns the n-th line of text, counting from zero.
func lineAt(text string, n int) string {
	for ; n > 0; n-- {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			return ""
		}
		text = text[i+1:]
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return text
}

// utf16Column converts a byte offset within line to UTF-16 code units and
// returns the width of the character found there, at least one.
func utf16Column(line string, offset int) (column, width int) {
	offset = min(offset, len(line))
	for _, r := range line[:offset] {
		column += utf16Units(r)
	}
	width = 1
	if offset < len(line) {
		r, _ := utf8.DecodeRuneInString(line[offset:])
		width = utf16Units(r)
	}
	return column, width
}

func utf16Units(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

func toProtocolSeverity(s diag.Severity) protocol.DiagnosticSeverity {
	switch s {
	case diag.Error:
		return protocol.DiagnosticSeverityError
	case diag.Warning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityInformation
	}
}

// displayPath shortens file URIs for log messages.
func displayPath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		if parsed, err := url.Parse(uri); err == nil {
			return filepath.Base(parsed.Path)
		}
	}
	return uri
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}
