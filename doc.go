// Package redis provides a pipelining redis client and the server-side
// plumbing to speak the redis wire protocol (RESP).
//
// The client routes keys across servers (XXH3 + jump hash), pools
// connections per server (puddle), and optionally guards each server
// with a circuit breaker (gobreaker):
//
//	client, err := redis.NewClient(redis.NewStaticServers("localhost:6379"), redis.Config{
//		MaxSize: 10,
//	})
//	value, err := client.Get(ctx, "greeting")
//
// Pipelines are built explicitly with resp.Request and executed in one
// round trip:
//
//	var req resp.Request
//	req.AddCommandByComponents("SET", "a", "1")
//	req.AddCommandByComponents("GET", "a")
//	rsp, err := client.ExecutePipeline(ctx, "a", &req)
//
// The server side decodes inbound commands and dispatches them through
// a CommandRegistry:
//
//	registry := redis.NewCommandRegistry()
//	registry.Register("PING", redis.HandlerFunc(
//		func(conn *redis.ConnContext, args [][]byte, out *resp.Writer) error {
//			out.WriteStatus("PONG")
//			return nil
//		}))
//	server := redis.NewServer(registry)
//	server.ListenAndServe(":6379")
//
// The wire codec itself lives in the resp subpackage.
package redis
