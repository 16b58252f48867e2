package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"chat-rag/internal/models"
)

const countsFileName = "counts.json"

// countIndex tracks per-file chunk counts per session. chromem has no way to
// enumerate a collection's documents, so stats and delete counts come from
// this index. With a non-empty path it is persisted as a sidecar file next to
// the collections and reloaded when the same database is reopened.
type countIndex struct {
	mu       sync.Mutex
	path     string
	sessions map[string]map[string]int
}

func newCountIndex(path string) *countIndex {
	c := &countIndex{sessions: make(map[string]map[string]int)}
	if path == "" {
		return c
	}
	c.path = filepath.Join(path, countsFileName)

	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("Could not read chunk count index")
		}
		return c
	}
	if err := json.Unmarshal(data, &c.sessions); err != nil {
		log.Warn().Err(err).Str("path", c.path).Msg("Could not parse chunk count index, starting empty")
		c.sessions = make(map[string]map[string]int)
	}
	return c
}

// save is called with mu held.
func (c *countIndex) save() {
	if c.path == "" {
		return
	}
	data, err := json.Marshal(c.sessions)
	if err != nil {
		return
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		log.Warn().Err(err).Str("path", c.path).Msg("Could not persist chunk count index")
	}
}

func (c *countIndex) add(sessionID, fileName string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	files, ok := c.sessions[sessionID]
	if !ok {
		files = make(map[string]int)
		c.sessions[sessionID] = files
	}
	files[fileName] += n
	c.save()
}

func (c *countIndex) get(sessionID, fileName string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[sessionID][fileName]
}

func (c *countIndex) drop(sessionID, fileName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions[sessionID], fileName)
	c.save()
}

func (c *countIndex) clear(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, sessionID)
	c.save()
}

func (c *countIndex) stats(sessionID string) models.SessionStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := models.SessionStats{PerFile: make(map[string]int)}
	for fileName, count := range c.sessions[sessionID] {
		stats.PerFile[fileName] = count
		stats.TotalChunks += count
	}
	stats.TotalFiles = len(stats.PerFile)
	return stats
}
