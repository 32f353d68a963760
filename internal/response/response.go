package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
)

// Entry is one named response: business code, message, HTTP status.
type Entry struct {
	Code   int
	Msg    string
	Status int
}

// Table maps dotted names ("doc.not_d") to response entries. It is
// loaded once at startup and immutable afterwards; Reload is the only
// refresh path, there is no file watching.
type Table struct {
	path string

	mu      sync.RWMutex
	entries map[string]Entry
}

// Load reads the table from a JSON file of nested groups, each name
// mapping to a [code, msg, status] triple:
//
//	{"doc": {"not_d": [1403, "not dominator", 403]}}
func Load(path string) (*Table, error) {
	t := &Table{path: path}
	if err := t.Reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// Reload re-reads the table file and swaps the map atomically.
func (t *Table) Reload() error {
	raw, err := os.ReadFile(t.path)
	if err != nil {
		return fmt.Errorf("read response table: %w", err)
	}
	var groups map[string]map[string][3]json.RawMessage
	if err := json.Unmarshal(raw, &groups); err != nil {
		return fmt.Errorf("parse response table: %w", err)
	}

	entries := map[string]Entry{}
	for group, names := range groups {
		for name, triple := range names {
			var e Entry
			if err := json.Unmarshal(triple[0], &e.Code); err != nil {
				return fmt.Errorf("response table %s.%s code: %w", group, name, err)
			}
			if err := json.Unmarshal(triple[1], &e.Msg); err != nil {
				return fmt.Errorf("response table %s.%s msg: %w", group, name, err)
			}
			if err := json.Unmarshal(triple[2], &e.Status); err != nil {
				return fmt.Errorf("response table %s.%s status: %w", group, name, err)
			}
			entries[group+"."+name] = e
		}
	}

	t.mu.Lock()
	t.entries = entries
	t.mu.Unlock()
	return nil
}

// Lookup resolves a dotted name.
func (t *Table) Lookup(name string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[name]
	return e, ok
}

// Envelope is the uniform response body.
type Envelope struct {
	Error int    `json:"error"`
	Msg   string `json:"msg"`
	Data  any    `json:"data"`
}

// Write renders the named response with the given payload. Unknown
// names fall back to a plain 500 so a table gap never panics a request.
func (t *Table) Write(c *gin.Context, name string, data any) {
	e, ok := t.Lookup(name)
	if !ok {
		c.JSON(http.StatusInternalServerError, Envelope{Error: -1, Msg: "unknown response " + name, Data: data})
		return
	}
	c.JSON(e.Status, Envelope{Error: e.Code, Msg: e.Msg, Data: data})
}

// OK renders the success envelope.
func (t *Table) OK(c *gin.Context, data any) {
	t.Write(c, "common.success", data)
}
