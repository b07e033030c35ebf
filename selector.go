package redis

import (
	"github.com/zeebo/xxh3"
)

// SelectServerFunc picks which server handles a given key. It receives
// the key and the current server list from Servers.List.
type SelectServerFunc func(key string, servers []string) (string, error)

// DefaultSelectServer hashes the key with XXH3 and maps it onto the
// server list with Jump consistent hashing, which minimizes key
// movement when servers are added or removed.
func DefaultSelectServer(key string, servers []string) (string, error) {
	if len(servers) == 0 {
		return "", ErrNoServersAvailable
	}
	if len(servers) == 1 {
		return servers[0], nil
	}
	return servers[jumpHash(xxh3.HashString(key), len(servers))], nil
}

// jumpHash implements Google's "Jump" consistent hash function
// (https://arxiv.org/abs/1406.2294).
func jumpHash(key uint64, numBuckets int) int {
	if numBuckets <= 0 {
		return 0
	}

	var b int64 = -1
	var j int64

	for j < int64(numBuckets) {
		b = j
		key = key*2862933555777941757 + 1
		j = int64(float64(b+1) * (float64(int64(1)<<31) / float64((key>>33)+1)))
	}

	return int(b)
}

// staticSelector is used in tests to always select a specific server.
func staticSelector(index int) SelectServerFunc {
	return func(key string, servers []string) (string, error) {
		if len(servers) == 0 {
			return "", ErrNoServersAvailable
		}
		return servers[index%len(servers)], nil
	}
}
