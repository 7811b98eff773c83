package mock

import (
	"sync"

	"github.com/alicebob/miniredis/v2"
)

var redisOnce sync.Once
var redisServer *miniredis.Miniredis

// NewRedis starts a shared in-process Redis server once per test binary.
func NewRedis() *miniredis.Miniredis {
	redisOnce.Do(func() {
		server, err := miniredis.Run()
		if err != nil {
			panic(err)
		}
		redisServer = server
	})
	return redisServer
}

// RedisURL returns a redis:// URL the application config can parse.
func RedisURL(server *miniredis.Miniredis) string {
	return "redis://" + server.Addr()
}

// ClearRedis drops every cached report and rate limit counter.
func ClearRedis(server *miniredis.Miniredis) {
	server.FlushAll()
}
