package services

import (
	"encoding/json"

	"github.com/coocood/freecache"
	"github.com/dmitrijs2005/filevault/internal/server/models"
)

// metadataTTL, in seconds, bounds how long a record may outlive a change
// made by another server instance.
const metadataTTL = 300

// MetadataCache keeps recently resolved file records keyed by container and
// id. Share links hit the same record repeatedly.
type MetadataCache struct {
	cache *freecache.Cache
}

// NewMetadataCache allocates size bytes; freecache raises anything below
// 512KiB to that minimum.
func NewMetadataCache(size int) *MetadataCache {
	return &MetadataCache{cache: freecache.NewCache(size)}
}

func cacheKey(containerID, id string) []byte {
	return []byte(containerID + "\x00" + id)
}

func (c *MetadataCache) Get(containerID, id string) (*models.File, bool) {
	b, err := c.cache.Get(cacheKey(containerID, id))
	if err != nil {
		return nil, false
	}
	var f models.File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, false
	}
	return &f, true
}

func (c *MetadataCache) Set(f *models.File) {
	b, err := json.Marshal(f)
	if err != nil {
		return
	}
	// entries over freecache's size limit are skipped
	_ = c.cache.Set(cacheKey(f.ContainerID, f.ID), b, metadataTTL)
}

func (c *MetadataCache) Evict(containerID, id string) {
	c.cache.Del(cacheKey(containerID, id))
}

// Stats reports hit and miss counters.
func (c *MetadataCache) Stats() (hits, misses int64) {
	return c.cache.HitCount(), c.cache.MissCount()
}
