// Package ui serves a browser playground for the converter: a form that
// converts pasted Java, a JSON endpoint for the same, and batch jobs for
// uploaded zip archives.
package ui

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/dhamidi/ibpc/batch"
	"github.com/dhamidi/ibpc/convert"
	"github.com/dhamidi/ibpc/diag"
	"github.com/tliron/commonlog"
)

//go:embed static templates
var embeddedFS embed.FS

var log = commonlog.GetLogger("ibpc.ui")

// MaxSourceBytes bounds the body of a conversion request.
const MaxSourceBytes = 1 << 20

type Server struct {
	runner     *batch.Runner
	options    convert.Options
	staticFS   fs.FS
	mux        *http.ServeMux
	templateFS fs.FS
	funcMap    template.FuncMap
}

func NewServer(options convert.Options) (*Server, error) {
	staticFS := overlayFS("ui/static", mustSub(embeddedFS, "static"))
	templateFS := overlayFS("ui/templates", mustSub(embeddedFS, "templates"))

	funcMap := template.FuncMap{
		"severityClass": func(d diag.Diagnostic) string {
			return "diag-" + d.Severity.String()
		},
	}

	if _, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "*.html"); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		runner:     batch.NewRunner(options),
		options:    options,
		staticFS:   staticFS,
		mux:        http.NewServeMux(),
		templateFS: templateFS,
		funcMap:    funcMap,
	}

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.mux.HandleFunc("POST /convert", s.handleConvert)
	s.mux.HandleFunc("POST /batches", s.handleBatch)
	s.mux.HandleFunc("GET /batches/{id}", s.handleGetBatch)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// render parses the templates on every call so edits under ui/templates
// show up without a restart.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, err := template.New("").Funcs(s.funcMap).ParseFS(s.templateFS, "*.html")
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Errorf("render %s: %s", name, err)
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

type indexData struct {
	Source string
	Result *convert.Result
	Jobs   []batch.Job
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", indexData{Jobs: s.runner.List()})
}

// ConvertRequest is the JSON body of POST /convert. Unset options keep the
// server defaults.
type ConvertRequest struct {
	Source  string          `json:"source"`
	Options *RequestOptions `json:"options,omitempty"`
}

type RequestOptions struct {
	PreserveComments  *bool   `json:"preserveComments,omitempty"`
	IndentSize        *int    `json:"indentSize,omitempty"`
	NotEqual          *string `json:"notEqual,omitempty"`
	UppercaseBooleans *bool   `json:"uppercaseBooleans,omitempty"`
	FlatElseIf        *bool   `json:"flatElseIf,omitempty"`
}

func (o *RequestOptions) apply(opts convert.Options) (convert.Options, error) {
	if o == nil {
		return opts, nil
	}
	if o.PreserveComments != nil {
		opts.PreserveComments = *o.PreserveComments
	}
	if o.IndentSize != nil {
		if *o.IndentSize < 0 {
			return opts, fmt.Errorf("indentSize must not be negative")
		}
		opts.IndentSize = *o.IndentSize
	}
	if o.NotEqual != nil {
		if *o.NotEqual != "≠" && *o.NotEqual != "<>" {
			return opts, fmt.Errorf("unsupported notEqual %q", *o.NotEqual)
		}
		opts.Rules.NotEqual = *o.NotEqual
	}
	if o.UppercaseBooleans != nil {
		opts.Rules.UppercaseBooleans = *o.UppercaseBooleans
	}
	if o.FlatElseIf != nil {
		opts.Rules.FlatElseIf = *o.FlatElseIf
	}
	return opts, nil
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxSourceBytes)

	if r.Header.Get("Content-Type") == "application/json" {
		var req ConvertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		opts, err := req.Options.apply(s.options)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Source == "" {
			http.Error(w, "source is empty", http.StatusBadRequest)
			return
		}
		writeJSON(w, convert.Convert(req.Source, opts))
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data: "+err.Error(), http.StatusBadRequest)
		return
	}
	source := r.FormValue("source")
	result := convert.Convert(source, s.options)
	s.render(w, "index.html", indexData{Source: source, Result: &result, Jobs: s.runner.List()})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid form data: "+err.Error(), http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("zipfile")
	if err != nil {
		http.Error(w, "must provide a zipfile", http.StatusBadRequest)
		return
	}
	defer file.Close()

	tmpFile, err := os.CreateTemp("", "ibpc-*.zip")
	if err != nil {
		http.Error(w, "failed to create temp file: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(tmpFile, file); err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		http.Error(w, "failed to save zip file: "+err.Error(), http.StatusInternalServerError)
		return
	}
	tmpFile.Close()

	id := s.runner.Submit(batch.Request{ZipFile: tmpFile.Name(), RemoveZip: true})
	http.Redirect(w, r, "/batches/"+id, http.StatusSeeOther)
}

func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	job, ok := s.runner.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, "batch not found", http.StatusNotFound)
		return
	}

	if r.Header.Get("Accept") == "application/json" {
		writeJSON(w, job)
		return
	}
	s.render(w, "job.html", job)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("encode response: %s", err)
	}
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// overlayFSType serves files from primary when present and falls back to
// secondary.
type overlayFSType struct {
	primary   fs.FS
	secondary fs.FS
}

func overlayFS(primaryPath string, secondary fs.FS) fs.FS {
	return &overlayFSType{
		primary:   os.DirFS(primaryPath),
		secondary: secondary,
	}
}

func (o *overlayFSType) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	return o.secondary.Open(name)
}

func (o *overlayFSType) ReadDir(name string) ([]fs.DirEntry, error) {
	entries := make(map[string]fs.DirEntry)

	if rd, ok := o.secondary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	if rd, ok := o.primary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	result := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}
	return result, nil
}
