// Package cache provides the bounded LRU cache used for decoded textures,
// masks and prepared (masked, edge-blended) texture variants.
//
//	c := cache.New[string, image.Image](64)
//	img, err := c.GetOrLoad("wall.png", decode)
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
