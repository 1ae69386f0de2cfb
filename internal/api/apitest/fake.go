// Package apitest provides an in-memory stand-in for the json-server backend
// the front end talks to. It understands the same collection routes and
// exact-match query filters.
package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"crudtask/internal/models"
)

type record map[string]any

// Seed holds the initial content of the fake backend.
type Seed struct {
	Users []models.User
	Tasks []models.Task
}

// Backend is a json-server compatible fake for /users and /tasks.
type Backend struct {
	mu          sync.Mutex
	collections map[string][]record
	nextID      map[string]int64
	failWith    int
	requests    []string

	server *httptest.Server
}

// New starts a fake backend populated with seed. Call Close when done.
func New(seed Seed) *Backend {
	b := &Backend{
		collections: map[string][]record{"users": {}, "tasks": {}},
		nextID:      map[string]int64{"users": 1, "tasks": 1},
	}
	for _, u := range seed.Users {
		b.insert("users", toRecord(u))
	}
	for _, t := range seed.Tasks {
		b.insert("tasks", toRecord(t))
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(b.logRequest, b.failure)
	router.GET("/:collection", b.handleList)
	router.POST("/:collection", b.handleCreate)
	router.GET("/:collection/:id", b.handleGet)
	router.PUT("/:collection/:id", b.handleReplace)
	router.PATCH("/:collection/:id", b.handlePatch)
	router.DELETE("/:collection/:id", b.handleDelete)
	b.server = httptest.NewServer(router)
	return b
}

// URL is the origin of the fake backend.
func (b *Backend) URL() string { return b.server.URL }

// Close stops the HTTP listener.
func (b *Backend) Close() { b.server.Close() }

// Fail makes every following request answer with status. Zero restores
// normal behavior.
func (b *Backend) Fail(status int) {
	b.mu.Lock()
	b.failWith = status
	b.mu.Unlock()
}

// Requests lists "METHOD /path?query" for every call received so far.
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

// Users returns a snapshot of the user collection.
func (b *Backend) Users() []models.User {
	var out []models.User
	b.snapshot("users", &out)
	return out
}

// Tasks returns a snapshot of the task collection.
func (b *Backend) Tasks() []models.Task {
	var out []models.Task
	b.snapshot("tasks", &out)
	return out
}

func (b *Backend) snapshot(collection string, out any) {
	b.mu.Lock()
	raw, _ := json.Marshal(b.collections[collection])
	b.mu.Unlock()
	_ = json.Unmarshal(raw, out)
}

func (b *Backend) insert(collection string, r record) record {
	if id, ok := r["id"]; !ok || fmt.Sprint(id) == "" {
		r["id"] = b.nextID[collection]
		b.nextID[collection]++
	} else if n, err := strconv.ParseInt(fmt.Sprint(id), 10, 64); err == nil && n >= b.nextID[collection] {
		b.nextID[collection] = n + 1
	}
	b.collections[collection] = append(b.collections[collection], r)
	return r
}

func (b *Backend) find(collection, id string) (int, bool) {
	for i, r := range b.collections[collection] {
		if fmt.Sprint(r["id"]) == id {
			return i, true
		}
	}
	return -1, false
}

func (b *Backend) logRequest(c *gin.Context) {
	line := c.Request.Method + " " + c.Request.URL.Path
	if c.Request.URL.RawQuery != "" {
		line += "?" + c.Request.URL.RawQuery
	}
	b.mu.Lock()
	b.requests = append(b.requests, line)
	b.mu.Unlock()
	c.Next()
}

func (b *Backend) failure(c *gin.Context) {
	b.mu.Lock()
	status := b.failWith
	b.mu.Unlock()
	if status != 0 {
		c.AbortWithStatusJSON(status, gin.H{"error": "injected failure"})
		return
	}
	c.Next()
}

// collection resolves the path parameter, answering 404 for unknown names.
func (b *Backend) collection(c *gin.Context) (string, bool) {
	name := c.Param("collection")
	if _, ok := b.collections[name]; !ok {
		c.JSON(http.StatusNotFound, gin.H{})
		return "", false
	}
	return name, true
}

func (b *Backend) handleList(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	name, ok := b.collection(c)
	if !ok {
		return
	}

	query := c.Request.URL.Query()
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []record{}
	for _, r := range b.collections[name] {
		match := true
		for _, k := range keys {
			if fmt.Sprint(r[k]) != query.Get(k) {
				match = false
				break
			}
		}
		if match {
			out = append(out, r)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (b *Backend) handleGet(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	name, ok := b.collection(c)
	if !ok {
		return
	}
	i, found := b.find(name, c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{})
		return
	}
	c.JSON(http.StatusOK, b.collections[name][i])
}

func (b *Backend) handleCreate(c *gin.Context) {
	body, ok := bindRecord(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	name, ok := b.collection(c)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, b.insert(name, body))
}

func (b *Backend) handleReplace(c *gin.Context) {
	body, ok := bindRecord(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	name, ok := b.collection(c)
	if !ok {
		return
	}
	i, found := b.find(name, c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{})
		return
	}
	body["id"] = b.collections[name][i]["id"]
	b.collections[name][i] = body
	c.JSON(http.StatusOK, body)
}

func (b *Backend) handlePatch(c *gin.Context) {
	body, ok := bindRecord(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	name, ok := b.collection(c)
	if !ok {
		return
	}
	i, found := b.find(name, c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{})
		return
	}
	current := b.collections[name][i]
	for k, v := range body {
		if k == "id" {
			continue
		}
		current[k] = v
	}
	c.JSON(http.StatusOK, current)
}

func (b *Backend) handleDelete(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	name, ok := b.collection(c)
	if !ok {
		return
	}
	i, found := b.find(name, c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{})
		return
	}
	b.collections[name] = append(b.collections[name][:i], b.collections[name][i+1:]...)
	c.JSON(http.StatusOK, gin.H{})
}

func bindRecord(c *gin.Context) (record, bool) {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	var r record
	if err := dec.Decode(&r); err != nil || r == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return nil, false
	}
	return r, true
}

func toRecord(v any) record {
	raw, _ := json.Marshal(v)
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var r record
	_ = dec.Decode(&r)
	return r
}
