// Package batch converts many Java files at once: a directory tree, an
// explicit file list or a zip archive. A Runner queues requests and
// processes them in the background so callers can poll progress.
package batch

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dhamidi/ibpc/convert"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("ibpc.batch")

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Request names the input of a job. Exactly one of Path, Files and ZipFile
// is expected. With RemoveZip set the job owns ZipFile and deletes it once
// processed.
type Request struct {
	ID        string    `json:"id"`
	Path      string    `json:"path,omitempty"`
	Files     []string  `json:"files,omitempty"`
	ZipFile   string    `json:"zipFile,omitempty"`
	RemoveZip bool      `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

type FileResult struct {
	Path   string         `json:"path"`
	Result convert.Result `json:"result"`
}

type Job struct {
	ID        string       `json:"id"`
	Status    Status       `json:"status"`
	Request   Request      `json:"request"`
	Files     []FileResult `json:"files"`
	Error     string       `json:"error,omitempty"`
	Errors    []string     `json:"errors,omitempty"`
	StartedAt time.Time    `json:"startedAt"`
	EndedAt   time.Time    `json:"endedAt"`
	Progress  int          `json:"progress"`
	Total     int          `json:"total"`
}

func (j Job) ProgressPercent() int {
	if j.Total == 0 {
		return 0
	}
	return (j.Progress * 100) / j.Total
}

// Failed counts the files whose conversion did not succeed.
func (j Job) Failed() int {
	n := 0
	for _, f := range j.Files {
		if !f.Result.Success {
			n++
		}
	}
	return n
}

// Run processes req synchronously. Files are converted in the order they
// are found; the job's Files are sorted by path.
func Run(req Request, opts convert.Options) *Job {
	job := &Job{ID: req.ID, Status: StatusInProgress, Request: req}
	process(job, opts, func(update func()) { update() })
	return job
}

type Runner struct {
	mu       sync.RWMutex
	jobs     map[string]*Job
	requests chan Request
	options  convert.Options
	nextID   int
}

func NewRunner(opts convert.Options) *Runner {
	r := newRunner(opts, 100)
	go r.run()
	return r
}

func newRunner(opts convert.Options, queue int) *Runner {
	return &Runner{
		jobs:     make(map[string]*Job),
		requests: make(chan Request, queue),
		options:  opts,
	}
}

func (r *Runner) run() {
	for req := range r.requests {
		r.mu.Lock()
		job := r.jobs[req.ID]
		job.Status = StatusInProgress
		r.mu.Unlock()

		process(job, r.options, func(update func()) {
			r.mu.Lock()
			defer r.mu.Unlock()
			update()
		})
	}
}

// Submit queues req and returns the id of its job. It blocks while the
// queue is full; Get and List keep working meanwhile.
func (r *Runner) Submit(req Request) string {
	r.mu.Lock()
	r.nextID++
	req.ID = fmt.Sprintf("%d", r.nextID)
	req.CreatedAt = time.Now()
	r.jobs[req.ID] = &Job{
		ID:      req.ID,
		Status:  StatusPending,
		Request: req,
	}
	r.mu.Unlock()

	r.requests <- req
	return req.ID
}

// Get returns a snapshot of the job with the given id.
func (r *Runner) Get(id string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	snapshot := *job
	snapshot.Files = append([]FileResult(nil), job.Files...)
	return snapshot, true
}

// List returns every job, newest first.
func (r *Runner) List() []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	jobs := make([]Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, *job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].Request.CreatedAt.After(jobs[j].Request.CreatedAt)
	})
	return jobs
}

// source is one Java file to convert, however it is stored.
type source struct {
	name string
	open func() (io.ReadCloser, error)
}

// process fills job. Every write to job goes through locked.
func process(job *Job, opts convert.Options, locked func(func())) {
	locked(func() { job.StartedAt = time.Now() })

	req := job.Request
	var sources []source
	var errors []string
	var closer io.Closer

	switch {
	case req.Path != "":
		sources, errors = walkDirectory(req.Path)
	case len(req.Files) > 0:
		for _, f := range req.Files {
			sources = append(sources, fileSource(f))
		}
	case req.ZipFile != "":
		if req.RemoveZip {
			defer func() {
				if err := os.Remove(req.ZipFile); err != nil {
					log.Errorf("remove %s: %s", req.ZipFile, err)
				}
			}()
		}
		zr, err := zip.OpenReader(req.ZipFile)
		if err != nil {
			errors = append(errors, fmt.Sprintf("open zip: %v", err))
			break
		}
		closer = zr
		sources = zipSources(&zr.Reader)
	default:
		errors = append(errors, "no path, files or zip file provided")
	}
	if closer != nil {
		defer closer.Close()
	}

	locked(func() { job.Total = len(sources) })

	for _, src := range sources {
		result, err := convertSource(src, opts)
		locked(func() {
			if err != nil {
				errors = append(errors, err.Error())
			} else {
				job.Files = append(job.Files, FileResult{Path: src.name, Result: result})
			}
			job.Progress++
		})
	}

	locked(func() {
		sort.Slice(job.Files, func(i, j int) bool {
			return job.Files[i].Path < job.Files[j].Path
		})
		job.EndedAt = time.Now()
		job.Errors = errors
		if len(errors) > 0 && len(job.Files) == 0 {
			job.Status = StatusFailed
			job.Error = errors[0]
		} else {
			job.Status = StatusCompleted
		}
	})
	log.Infof("job %s: %d files, %d failed, %d errors", job.ID, len(job.Files), job.Failed(), len(errors))
}

func convertSource(src source, opts convert.Options) (convert.Result, error) {
	rc, err := src.open()
	if err != nil {
		return convert.Result{}, fmt.Errorf("open %s: %w", src.name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return convert.Result{}, fmt.Errorf("read %s: %w", src.name, err)
	}
	log.Debugf("converting %s", src.name)
	return convert.Convert(string(data), opts), nil
}

func fileSource(path string) source {
	return source{
		name: path,
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// walkDirectory lists the .java files below root, skipping hidden
// directories.
func walkDirectory(root string) ([]source, []string) {
	var sources []source
	var errors []string
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			errors = append(errors, fmt.Sprintf("walk %s: %v", p, err))
			return nil
		}
		if info.IsDir() {
			if p != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsJavaFile(p) {
			sources = append(sources, fileSource(p))
		}
		return nil
	})
	if err != nil {
		errors = append(errors, fmt.Sprintf("walk %s: %v", root, err))
	}
	return sources, errors
}

func zipSources(r *zip.Reader) []source {
	var sources []source
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !IsJavaFile(f.Name) {
			continue
		}
		sources = append(sources, source{name: f.Name, open: f.Open})
	}
	return sources
}

func IsJavaFile(name string) bool {
	return filepath.Ext(name) == ".java"
}

// PseudoPath is the output file written next to a Java source file.
func PseudoPath(javaPath string) string {
	return strings.TrimSuffix(javaPath, filepath.Ext(javaPath)) + ".pseudo"
}

// WriteResult stores the pseudocode of one converted file next to it.
// Failed conversions are not written.
func WriteResult(f FileResult) error {
	if !f.Result.Success {
		return nil
	}
	out := PseudoPath(f.Path)
	if err := os.WriteFile(out, []byte(f.Result.Pseudocode+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}
