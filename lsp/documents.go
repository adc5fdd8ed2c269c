package lsp

import "sync"

// Documents holds the text of every open document by URI.
type Documents struct {
	mu    sync.RWMutex
	texts map[string]string
}

func NewDocuments() *Documents {
	return &Documents{texts: make(map[string]string)}
}

func (d *Documents) Update(uri, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.texts[uri] = text
}

func (d *Documents) Get(uri string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	text, ok := d.texts[uri]
	return text, ok
}

func (d *Documents) Remove(uri string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.texts, uri)
}

func (d *Documents) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.texts)
}
