package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/pior/redis/resp"
)

// Nil is returned when a key does not exist.
var Nil = errors.New("redis: nil")

// ReplyError is an error reply sent by the server (an "-ERR ..." line).
// The connection remains usable.
type ReplyError string

func (e ReplyError) Error() string {
	return "redis: " + string(e)
}

// ShouldCloseConnection returns false - the protocol stream is intact.
func (e ReplyError) ShouldCloseConnection() bool {
	return false
}

// replyError converts an error reply into a ReplyError, nil otherwise.
func replyError(r *resp.Reply) error {
	if r.IsError() {
		return ReplyError(r.ErrorMessage())
	}
	return nil
}

// Get retrieves the value of key. Returns Nil when the key is missing.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	reply, err := c.Do(ctx, "GET", key)
	if err != nil {
		return nil, err
	}
	if err := replyError(reply); err != nil {
		return nil, err
	}
	if reply.IsNil() {
		return nil, Nil
	}
	return reply.Bytes(), nil
}

// Set stores value under key.
func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	reply, err := c.Do(ctx, "SET", key, string(value))
	if err != nil {
		return err
	}
	return replyError(reply)
}

// Del removes keys, returning the number of keys that existed. All
// keys are routed by the first one; with multiple servers, delete keys
// that hash together or call Del per key.
func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	args := append([]string{"DEL"}, keys...)
	reply, err := c.Do(ctx, args...)
	if err != nil {
		return 0, err
	}
	if err := replyError(reply); err != nil {
		return 0, err
	}
	return reply.Integer(), nil
}

// Incr increments the integer value of key by one.
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	return c.IncrBy(ctx, key, 1)
}

// IncrBy increments the integer value of key by delta.
func (c *Client) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	reply, err := c.Do(ctx, "INCRBY", key, strconv.FormatInt(delta, 10))
	if err != nil {
		return 0, err
	}
	if err := replyError(reply); err != nil {
		return 0, err
	}
	return reply.Integer(), nil
}

// Ping checks connectivity to the server selected for an empty key.
func (c *Client) Ping(ctx context.Context) error {
	reply, err := c.Do(ctx, "PING")
	if err != nil {
		return err
	}
	if err := replyError(reply); err != nil {
		return err
	}
	if reply.Status() != "PONG" {
		return errors.New("redis: unexpected PING reply: " + reply.String())
	}
	return nil
}
